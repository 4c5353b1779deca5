package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vovakirdan/bloom/internal/merge"
)

// EquipSkin sets the asset drawn for tier.
func (s *Store) EquipSkin(tier merge.Tier, asset string) error {
	if !tier.Valid() {
		return fmt.Errorf("storage: cannot equip skin: invalid tier %d", int(tier))
	}
	if asset == "" {
		return errors.New("storage: cannot equip skin: empty asset id")
	}
	_, err := s.db.Exec(
		`INSERT INTO equipped_skins (tier, asset) VALUES (?, ?)
		 ON CONFLICT(tier) DO UPDATE
		 SET asset = excluded.asset, updated_at = CURRENT_TIMESTAMP`,
		int(tier), asset,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot equip skin: %w", err)
	}
	return nil
}

// ResetSkin returns tier to its default asset.
func (s *Store) ResetSkin(tier merge.Tier) error {
	if _, err := s.db.Exec("DELETE FROM equipped_skins WHERE tier = ?", int(tier)); err != nil {
		return fmt.Errorf("storage: cannot reset skin: %w", err)
	}
	return nil
}

// Skin returns the asset stored for tier, or the tier's own name when
// nothing is equipped.
func (s *Store) Skin(tier merge.Tier) (string, error) {
	var asset string
	err := s.db.QueryRow("SELECT asset FROM equipped_skins WHERE tier = ?", int(tier)).Scan(&asset)
	if errors.Is(err, sql.ErrNoRows) {
		return tier.Name(), nil
	}
	if err != nil {
		return tier.Name(), fmt.Errorf("storage: cannot query skin: %w", err)
	}
	return asset, nil
}

// SkinSet is a read-through snapshot of equipped skins. It implements
// merge.SkinLookup without touching the database on every frame.
type SkinSet map[merge.Tier]string

var _ merge.SkinLookup = SkinSet(nil)

// EquippedSkin returns the asset for t, defaulting to the tier name.
func (s SkinSet) EquippedSkin(t merge.Tier) string {
	if asset, ok := s[t]; ok {
		return asset
	}
	return t.Name()
}

// LoadSkins reads every equipped skin.
func (s *Store) LoadSkins() (SkinSet, error) {
	rows, err := s.db.Query("SELECT tier, asset FROM equipped_skins")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query skins: %w", err)
	}
	defer rows.Close()

	set := make(SkinSet)
	for rows.Next() {
		var tier int
		var asset string
		if err := rows.Scan(&tier, &asset); err != nil {
			return nil, fmt.Errorf("storage: cannot scan skin row: %w", err)
		}
		set[merge.Tier(tier)] = asset
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return set, nil
}
