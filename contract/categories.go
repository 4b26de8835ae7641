// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import "errors"

var ErrUnknownCategory = errors.New("unknown legal category")

type Category struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
}

// LegalCategories mirrors the categories stored in the contract.
var LegalCategories = []Category{
	{ID: 1, Name: "Civil Law"},
	{ID: 2, Name: "Criminal Law"},
	{ID: 3, Name: "Family Law"},
	{ID: 4, Name: "Corporate Law"},
	{ID: 5, Name: "Employment Law"},
	{ID: 6, Name: "Real Estate Law"},
	{ID: 7, Name: "Immigration Law"},
	{ID: 8, Name: "Tax Law"},
}

func CategoryName(id uint32) (string, bool) {
	for _, c := range LegalCategories {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}
