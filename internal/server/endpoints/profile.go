package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptomatic/promptomatic/internal/api"
	"github.com/promptomatic/promptomatic/internal/store"
	"github.com/promptomatic/promptomatic/internal/svcctx"
	"github.com/promptomatic/promptomatic/internal/types"
)

// GetProfileEndpoint handles GET /api/profile.
type GetProfileEndpoint struct{}

func (e *GetProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/profile", e.handler
}

func (e *GetProfileEndpoint) RequiresInit() bool { return true }

func (e *GetProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusInternalServerError, "store not available")
		return
	}

	p, err := st.GetProfile(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (e *GetProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the teacher profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp types.TeacherProfile
			if err := client.Get(cmd.Context(), "/api/profile", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// UpdateProfileEndpoint handles PUT /api/profile.
// Updates merge: fields absent from the request keep their stored value.
type UpdateProfileEndpoint struct{}

func (e *UpdateProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/profile", e.handler
}

func (e *UpdateProfileEndpoint) RequiresInit() bool { return true }

func (e *UpdateProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var patch store.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusInternalServerError, "store not available")
		return
	}

	p, err := st.UpdateProfile(r.Context(), patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (e *UpdateProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "update <patch-json>",
		Short: "Update the teacher profile (merge semantics)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.ProfilePatch
			if err := json.Unmarshal([]byte(args[0]), &patch); err != nil {
				return err
			}
			client := api.NewClient(getServerURL())
			var resp types.TeacherProfile
			if err := client.Put(cmd.Context(), "/api/profile", patch, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
