package models

import (
	"encoding/json"
	"fmt"
)

// User is the authenticated account as the backend describes it.
type User struct {
	ID        ID
	Email     string
	Username  string
	IsActive  *bool
	CreatedAt string
	UpdatedAt string
	Extra     Extra
}

// DisplayName picks the friendliest identifier available.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return u.ID.String()
	}
}

func (u *User) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	var out User
	if err := firstErr(
		f.take(&out.ID, "id"),
		f.take(&out.Email, "email"),
		f.take(&out.Username, "username"),
		f.take(&out.IsActive, "is_active"),
		f.take(&out.CreatedAt, "created_at"),
		f.take(&out.UpdatedAt, "updated_at"),
	); err != nil {
		return fmt.Errorf("decode user: %w", err)
	}
	out.Extra = f.extra()
	*u = out
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	f := encodeFields(u.Extra)
	if err := firstErr(
		f.put("id", u.ID),
		f.putIf(u.Email != "", "email", u.Email),
		f.putIf(u.Username != "", "username", u.Username),
		f.putIf(u.IsActive != nil, "is_active", u.IsActive),
		f.putIf(u.CreatedAt != "", "created_at", u.CreatedAt),
		f.putIf(u.UpdatedAt != "", "updated_at", u.UpdatedAt),
	); err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return f.marshal()
}

// Merge returns a copy of u with the top-level keys of patch overlaid. Keys
// absent from patch keep their current values. A nil receiver merges into an
// empty user.
func (u *User) Merge(patch any) (*User, error) {
	base := map[string]json.RawMessage{}
	if u != nil {
		raw, err := json.Marshal(u)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	var over map[string]json.RawMessage
	if err := json.Unmarshal(raw, &over); err != nil {
		return nil, fmt.Errorf("patch must be an object: %w", err)
	}
	for k, v := range over {
		base[k] = v
	}

	raw, err = json.Marshal(base)
	if err != nil {
		return nil, err
	}
	var merged User
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}
