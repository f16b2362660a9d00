package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avasilyev/pokedex-api/internal/hash"
	"github.com/avasilyev/pokedex-api/internal/models"
	"github.com/avasilyev/pokedex-api/internal/repo"
)

const PokedexURL = "https://raw.githubusercontent.com/fanzeyi/pokemon.json/master/pokedex.json"

// EnsureAdmin creates the default admin account on first boot.
func EnsureAdmin(ctx context.Context, users *repo.UserRepo) error {
	if _, err := users.FindByUsername(ctx, "admin"); err == nil {
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword("admin")
	if err != nil {
		return err
	}
	return users.Create(ctx, &models.User{
		Username:     "admin",
		PasswordHash: pwHash,
		Role:         "admin",
		Email:        "admin@admin.ca",
	})
}

// pokedexDoc matches the upstream JSON, where the special stats are still
// named "Sp. Attack" and "Sp. Defense".
type pokedexDoc struct {
	ID   int                `json:"id"`
	Name models.PokemonName `json:"name"`
	Type []string           `json:"type"`
	Base struct {
		HP        int `json:"HP"`
		Attack    int `json:"Attack"`
		Defense   int `json:"Defense"`
		SpAttack  int `json:"Sp. Attack"`
		SpDefense int `json:"Sp. Defense"`
		Speed     int `json:"Speed"`
	} `json:"base"`
}

// Pokemons downloads the pokedex dataset and inserts every entry that is not
// already stored. Returns the number of inserted rows.
func Pokemons(ctx context.Context, pokemons *repo.PokemonRepo, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch pokedex: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch pokedex: unexpected status %s", resp.Status)
	}

	var docs []pokedexDoc
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return 0, fmt.Errorf("decode pokedex: %w", err)
	}

	inserted := 0
	for _, doc := range docs {
		if _, err := pokemons.FindByID(ctx, doc.ID); err == nil {
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return inserted, err
		}

		p := models.Pokemon{
			ID:   doc.ID,
			Name: doc.Name,
			Type: doc.Type,
			Base: models.PokemonBase{
				HP:           doc.Base.HP,
				Attack:       doc.Base.Attack,
				Defense:      doc.Base.Defense,
				SpeedAttack:  doc.Base.SpAttack,
				SpeedDefense: doc.Base.SpDefense,
				Speed:        doc.Base.Speed,
			},
		}
		if err := pokemons.Create(ctx, &p); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}
