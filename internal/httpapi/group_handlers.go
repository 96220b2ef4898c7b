package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"aitio.org/internal/access"
	"aitio.org/internal/audit"
)

type groupRequest struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	BusinessCode string   `json:"business_code"`
	Address      string   `json:"address"`
	Domains      []string `json:"domains"`
}

type memberRequest struct {
	AccountID string        `json:"account_id"`
	Rights    access.Rights `json:"rights"`
}

func (req groupRequest) group() *access.Group {
	return &access.Group{
		ID:           req.ID,
		Name:         req.Name,
		BusinessCode: req.BusinessCode,
		Address:      req.Address,
		Domains:      req.Domains,
	}
}

// handleGroup covers POST (create) and PUT (update) on /v1/group.
func (a *API) handleGroup(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	var req groupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPost:
		group, member, err := a.svc.CreateGroup(r.Context(), req.group(), id.Account)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.group.create", map[string]any{
			"group_id": group.ID,
			"name":     group.Name,
		})
		w.Header().Set("Location", fmt.Sprintf("/v1/group/%s", group.ID))
		writeJSON(w, http.StatusCreated, map[string]any{
			"group":  group,
			"member": member,
		})
	case http.MethodPut:
		group, err := a.svc.UpdateGroup(r.Context(), req.group(), id.Account)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.group.update", map[string]any{
			"group_id": group.ID,
		})
		writeJSON(w, http.StatusOK, group)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodPut)
	}
}

// handleGroups is the directory listing.
func (a *API) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	groups, err := a.svc.GetGroups(r.Context())
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": groups})
}

// handleGroupScoped routes /v1/group/{id} and /v1/group/{id}/members[/{accountID}].
func (a *API) handleGroupScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/group/"), "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	groupID := parts[0]

	switch {
	case len(parts) == 1:
		a.handleGroupByID(w, r, groupID)
	case len(parts) == 2 && parts[1] == "members":
		a.handleGroupMembers(w, r, groupID)
	case len(parts) == 3 && parts[1] == "members":
		a.handleGroupMember(w, r, groupID, parts[2])
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleGroupByID(w http.ResponseWriter, r *http.Request, groupID string) {
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		group, err := a.svc.GetGroup(r.Context(), groupID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		if err := a.svc.ConfirmGroupPermission(r.Context(), access.RightRead, group, id.Account); err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, group)
	case http.MethodDelete:
		group, err := a.svc.DeleteGroup(r.Context(), groupID, id.Account)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.group.delete", map[string]any{
			"group_id": group.ID,
		})
		writeJSON(w, http.StatusOK, group)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleGroupMembers(w http.ResponseWriter, r *http.Request, groupID string) {
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	group, err := a.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		if err := a.svc.ConfirmGroupPermission(r.Context(), access.RightRead, group, id.Account); err != nil {
			handleAccessError(w, r, err)
			return
		}
		members, err := a.svc.MembersByGroup(r.Context(), group)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	case http.MethodPost:
		if err := a.svc.ConfirmGroupPermission(r.Context(), access.RightWrite, group, id.Account); err != nil {
			handleAccessError(w, r, err)
			return
		}
		var req memberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		account, err := a.svc.GetAccount(r.Context(), req.AccountID)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		member, err := a.svc.AddMember(r.Context(), account, group, req.Rights)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.member.add", map[string]any{
			"group_id":   group.ID,
			"member_id":  member.ID,
			"account_id": account.ID,
		})
		writeJSON(w, http.StatusCreated, member)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleGroupMember(w http.ResponseWriter, r *http.Request, groupID, accountID string) {
	id, err := identity(r)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	group, err := a.svc.GetGroup(r.Context(), groupID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}
	account, err := a.svc.GetAccount(r.Context(), accountID)
	if err != nil {
		handleAccessError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		if err := a.svc.ConfirmGroupPermission(r.Context(), access.RightWrite, group, id.Account); err != nil {
			handleAccessError(w, r, err)
			return
		}
		var req memberRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		member, err := a.svc.UpdateMember(r.Context(), account, group, req.Rights)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.member.update", map[string]any{
			"group_id":   group.ID,
			"account_id": account.ID,
			"rights":     member.Rights.String(),
		})
		writeJSON(w, http.StatusOK, member)
	case http.MethodDelete:
		if err := a.svc.ConfirmGroupPermission(r.Context(), access.RightDelete, group, id.Account); err != nil {
			handleAccessError(w, r, err)
			return
		}
		member, err := a.svc.RemoveMember(r.Context(), account, group)
		if err != nil {
			handleAccessError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "access.member.remove", map[string]any{
			"group_id":   group.ID,
			"account_id": account.ID,
		})
		writeJSON(w, http.StatusOK, member)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}
