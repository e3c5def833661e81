package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hackboard/hackboard/internal/hackathon"
	"github.com/hackboard/hackboard/internal/httputil"
	"github.com/hackboard/hackboard/internal/middleware"
	"github.com/hackboard/hackboard/internal/service"
	"github.com/hackboard/hackboard/internal/store"
	"github.com/hackboard/hackboard/internal/utils"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(database *sqlx.DB, sessionManager *scs.SessionManager, rng service.Randomizer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)

	userStore := store.NewUserStore(database)
	ideaStore := store.NewIdeaStore(database)
	hackathonStore := store.NewHackathonStore(database)

	userService := service.NewUserService(database, userStore)
	ideaService := service.NewIdeaService(database, ideaStore)
	hackathonService := service.NewHackathonService(database, hackathonStore, ideaStore)
	teamService := service.NewTeamService(database, hackathonStore, rng)

	r.Use(middleware.LoadViewer(sessionManager, userStore))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/session", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Username == "" {
				httputil.BadRequest(w, "username is required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			sessionManager.Put(r.Context(), middleware.SessionUsernameKey, user.Username)
			httputil.JSON(w, http.StatusOK, user)
		})

		r.Delete("/session", func(w http.ResponseWriter, r *http.Request) {
			if err := sessionManager.Destroy(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to clear session", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/ideas", func(w http.ResponseWriter, r *http.Request) {
			ideas, err := ideaService.ListIdeas(r.Context(), middleware.GetViewerIDFromContext(r.Context()))
			if err != nil {
				httputil.InternalServerError(w, "Failed to fetch ideas", err)
				return
			}
			httputil.JSON(w, http.StatusOK, ideas)
		})

		r.Post("/ideas", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Username    string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Title == "" || req.Description == "" || req.Username == "" {
				httputil.BadRequest(w, "title, description, and username are required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			created, err := ideaService.CreateIdea(r.Context(), req.Title, req.Description, user.ID)
			if err != nil {
				httputil.InternalServerError(w, "Failed to create idea", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, created)
		})

		r.Get("/ideas/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid idea ID", err)
				return
			}

			agg, err := ideaService.GetIdea(r.Context(), id, middleware.GetViewerIDFromContext(r.Context()))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Idea not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to fetch idea", err)
				return
			}
			httputil.JSON(w, http.StatusOK, agg)
		})

		r.Get("/comments", func(w http.ResponseWriter, r *http.Request) {
			ideaID, err := uuid.Parse(r.URL.Query().Get("ideaId"))
			if err != nil {
				httputil.BadRequest(w, "ideaId is required", err)
				return
			}

			comments, err := ideaService.ListComments(r.Context(), ideaID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Idea not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to fetch comments", err)
				return
			}
			httputil.JSON(w, http.StatusOK, comments)
		})

		r.Post("/comments", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				IdeaID   uuid.UUID `json:"ideaId"`
				Username string    `json:"username"`
				Content  string    `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.IdeaID == uuid.Nil || req.Username == "" || req.Content == "" {
				httputil.BadRequest(w, "ideaId, username, and content are required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			comment, err := ideaService.AddComment(r.Context(), req.IdeaID, user.ID, req.Content)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Idea not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to create comment", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, comment)
		})

		r.Post("/votes", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				IdeaID   uuid.UUID `json:"ideaId"`
				Username string    `json:"username"`
				VoteType int       `json:"voteType"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.IdeaID == uuid.Nil || req.Username == "" {
				httputil.BadRequest(w, "ideaId and username are required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			agg, err := ideaService.CastVote(r.Context(), req.IdeaID, user.ID, req.VoteType)
			if err != nil {
				if errors.Is(err, service.ErrInvalidVote) {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Idea not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to process vote", err)
				return
			}
			httputil.JSON(w, http.StatusOK, agg)
		})

		r.Get("/hackathons", func(w http.ResponseWriter, r *http.Request) {
			hackathons, err := hackathonService.ListHackathons(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to fetch hackathons", err)
				return
			}
			httputil.JSON(w, http.StatusOK, hackathons)
		})

		r.Post("/hackathons", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				StartDate   string `json:"startDate"`
				EndDate     string `json:"endDate"`
				Mode        string `json:"mode"`
				Username    string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Name == "" || req.Username == "" {
				httputil.BadRequest(w, "name and username are required", nil)
				return
			}

			input, err := hackathonInput(req.Name, req.Description, req.StartDate, req.EndDate, req.Mode)
			if err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			created, err := hackathonService.CreateHackathon(r.Context(), input, user.ID)
			if err != nil {
				if errors.Is(err, service.ErrInvalidMode) {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				httputil.InternalServerError(w, "Failed to create hackathon", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, created)
		})

		r.Get("/hackathons/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			data, err := hackathonService.GetHackathonData(r.Context(), id, middleware.GetViewerIDFromContext(r.Context()))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to fetch hackathon", err)
				return
			}
			httputil.JSON(w, http.StatusOK, data)
		})

		r.Put("/hackathons/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			var req struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				StartDate   string `json:"startDate"`
				EndDate     string `json:"endDate"`
				Mode        string `json:"mode"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Name == "" {
				httputil.BadRequest(w, "name is required", nil)
				return
			}

			input, err := hackathonInput(req.Name, req.Description, req.StartDate, req.EndDate, req.Mode)
			if err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}

			updated, err := hackathonService.UpdateHackathon(r.Context(), id, input)
			if err != nil {
				if errors.Is(err, service.ErrInvalidMode) {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to update hackathon", err)
				return
			}
			httputil.JSON(w, http.StatusOK, updated)
		})

		r.Post("/hackathons/{id}/ideas", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			var req struct {
				IdeaID uuid.UUID `json:"ideaId"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.IdeaID == uuid.Nil {
				httputil.BadRequest(w, "ideaId is required", nil)
				return
			}

			if err := hackathonService.AddIdea(r.Context(), id, req.IdeaID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon or idea not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to add idea to hackathon", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Idea added to hackathon"})
		})

		r.Delete("/hackathons/{id}/ideas", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			ideaID, err := uuid.Parse(r.URL.Query().Get("ideaId"))
			if err != nil {
				httputil.BadRequest(w, "ideaId is required", err)
				return
			}

			if err := hackathonService.RemoveIdea(r.Context(), id, ideaID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to remove idea from hackathon", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Idea removed from hackathon"})
		})

		r.Post("/hackathons/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			var req struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Username == "" {
				httputil.BadRequest(w, "username is required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			if err := hackathonService.AddParticipant(r.Context(), id, user.ID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to add participant", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Participant added successfully"})
		})

		r.Delete("/hackathons/{id}/participants", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			username := r.URL.Query().Get("username")
			if username == "" {
				httputil.BadRequest(w, "username is required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			if err := hackathonService.RemoveParticipant(r.Context(), id, user.ID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to remove participant", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Participant removed successfully"})
		})

		r.Post("/hackathons/{id}/randomize", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid hackathon ID", err)
				return
			}

			// An absent body means "use the default team size".
			var req struct {
				TeamSize *int `json:"teamSize"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			teamSize := utils.OrDefault(req.TeamSize, service.DefaultTeamSize)

			if err := teamService.RandomizeTeams(r.Context(), id, teamSize); err != nil {
				if errors.Is(err, service.ErrInvalidTeamSize) {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to randomize teams", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Teams randomized successfully"})
		})

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Name        string     `json:"name"`
				HackathonID uuid.UUID  `json:"hackathonId"`
				IdeaID      *uuid.UUID `json:"ideaId"`
				Username    string     `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Name == "" || req.HackathonID == uuid.Nil || req.Username == "" {
				httputil.BadRequest(w, "name, hackathonId, and username are required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			team, err := teamService.CreateTeam(r.Context(), req.Name, req.HackathonID, req.IdeaID, user.ID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Hackathon not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to create team", err)
				return
			}
			httputil.JSON(w, http.StatusCreated, team)
		})

		r.Post("/teams/{id}/members", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid team ID", err)
				return
			}

			var req struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httputil.BadRequest(w, "Invalid JSON", err)
				return
			}
			if req.Username == "" {
				httputil.BadRequest(w, "username is required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), req.Username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			if err := teamService.AddMember(r.Context(), id, user.ID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Team not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to add team member", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Member added to team"})
		})

		r.Delete("/teams/{id}/members", func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				httputil.BadRequest(w, "Invalid team ID", err)
				return
			}

			username := r.URL.Query().Get("username")
			if username == "" {
				httputil.BadRequest(w, "username is required", nil)
				return
			}

			user, err := userService.GetOrCreateUser(r.Context(), username)
			if err != nil {
				httputil.InternalServerError(w, "Failed to resolve user", err)
				return
			}

			if err := teamService.RemoveMember(r.Context(), id, user.ID); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					httputil.NotFound(w, "Team not found", err)
					return
				}
				httputil.InternalServerError(w, "Failed to remove team member", err)
				return
			}
			httputil.JSON(w, http.StatusOK, map[string]string{"message": "Member removed from team"})
		})
	})

	return r
}

// hackathonInput normalizes the shared create/update request shape. An empty
// mode is passed through so the service can default it on create.
func hackathonInput(name, description, startDate, endDate, mode string) (service.HackathonInput, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return service.HackathonInput{}, err
	}
	end, err := parseDate(endDate)
	if err != nil {
		return service.HackathonInput{}, err
	}
	return service.HackathonInput{
		Name:        name,
		Description: utils.StringOrNil(description),
		StartDate:   start,
		EndDate:     end,
		Mode:        hackathon.Mode(mode),
	}, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", s)
}
