package mutate

import (
	"context"
	"strings"

	"boardsync/internal/admin"
	"boardsync/internal/model"
)

// AdminCreateUser provisions an account through the delegated admin boundary.
// There is no optimistic insert: the profile is appended only once the hub
// returns the new id (reconciliation would duplicate a guessed one).
func (m *Mutator) AdminCreateUser(ctx context.Context, email string, password, name *string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}
	req := admin.CreateUserRequest{Email: email, Password: password, Name: name}

	previous := m.Store.Profiles()
	m.Exec.Run(ctx,
		func() {},
		func() { m.Store.ReplaceProfiles(previous) },
		func(ctx context.Context) error {
			id, err := m.Admin.CreateUser(ctx, req)
			if err != nil {
				return err
			}
			m.Store.UpsertProfile(model.Profile{
				ID:    id,
				Email: model.StrPtr(email),
				Name:  name,
				Role:  model.RoleMember,
			})
			return nil
		},
	)
}

// AdminUpdateUser optimistically patches the local profile and sends the
// account update. A forbidden response rolls back like any other failure.
func (m *Mutator) AdminUpdateUser(ctx context.Context, id string, upd admin.UserUpdate) {
	profile, ok := m.Store.FindProfile(id)
	if !ok {
		return
	}
	if upd.Email != nil {
		profile.Email = upd.Email
	}
	if upd.Name != nil {
		profile.Name = upd.Name
	}

	previous := m.Store.Profiles()
	m.Exec.Run(ctx,
		func() { m.Store.UpsertProfile(profile) },
		func() { m.Store.ReplaceProfiles(previous) },
		func(ctx context.Context) error { return m.Admin.UpdateUser(ctx, id, upd) },
	)
}

// AdminDeleteUser optimistically drops the profile and deletes the account.
func (m *Mutator) AdminDeleteUser(ctx context.Context, id string) {
	previous := m.Store.Profiles()
	m.Exec.Run(ctx,
		func() { m.Store.RemoveProfile(id) },
		func() { m.Store.ReplaceProfiles(previous) },
		func(ctx context.Context) error { return m.Admin.DeleteUser(ctx, id) },
	)
}
