package service

import (
	"context"

	ledgerservice "github.com/syedmusab/rvm-backend/internal/ledger/service"
	"github.com/syedmusab/rvm-backend/internal/profile/store"
	pkgstrings "github.com/syedmusab/rvm-backend/pkg/platform/strings"
)

// Directory adapts the profile store to the ledger ranker's attribute
// lookup. It lives here so the ledger domain stays free of profile imports.
type Directory struct {
	profiles store.ProfileStore
}

func NewDirectory(profiles store.ProfileStore) *Directory {
	return &Directory{profiles: profiles}
}

func (d *Directory) AttributesByPhone(ctx context.Context, phones []string) (map[string]ledgerservice.ProfileAttrs, error) {
	phones = pkgstrings.DedupeAndTrim(phones)
	found, err := d.profiles.FindByPhones(ctx, phones)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ledgerservice.ProfileAttrs, len(found))
	for _, p := range found {
		out[p.PhoneNumber] = ledgerservice.ProfileAttrs{
			UserName:   p.UserName,
			Gender:     p.Gender,
			NationalID: p.NationalID,
		}
	}
	return out, nil
}
