package fakebackend

import (
	"net/http"

	"github.com/jrsteele09/go-mindcare-client/backend"
	"github.com/jrsteele09/go-mindcare-client/users"
)

func toAccount(u *users.User) backend.Account {
	return backend.Account{ID: u.ID, Name: u.Name, Email: u.Email, Status: string(u.Status), Role: u.Role}
}

func (b *Backend) listAccounts(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	list, err := b.users.List(0, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	out := make([]backend.Account, 0, len(list))
	for _, u := range list {
		out = append(out, toAccount(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	u, err := b.users.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, toAccount(u))
}

func (b *Backend) createAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.AccountInput
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Password != in.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if _, err := b.users.GetByEmail(in.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}

	u, err := b.AddUser(in.Email, in.Password, in.Role, in.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if in.Status != "" {
		u.Status = users.Status(in.Status)
		_ = b.users.Upsert(u)
	}
	writeJSON(w, http.StatusCreated, toAccount(u))
}

func (b *Backend) updateAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	var in backend.AccountUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := b.users.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if in.Email != nil && *in.Email != u.Email {
		if _, err := b.users.GetByEmail(*in.Email); err == nil {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		u.Email = *in.Email
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Status != nil {
		u.Status = users.Status(*in.Status)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if err := b.users.Upsert(u); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, toAccount(u))
}

func (b *Backend) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.requireAdmin(w, r); !ok {
		return
	}
	if err := b.users.Delete(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
