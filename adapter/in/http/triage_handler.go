package http

import (
	"time"

	"triage_server/core/service/digest"
	"triage_server/core/service/triage"
	"triage_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const defaultRecentHours = 24

// TriageHandler exposes the email triage surface: list views for the
// review client and the swipe mutations it issues.
type TriageHandler struct {
	triage      *triage.Service
	digest      *digest.Service
	defaultUser string
}

func NewTriageHandler(triageSvc *triage.Service, digestSvc *digest.Service, defaultUser string) *TriageHandler {
	return &TriageHandler{
		triage:      triageSvc,
		digest:      digestSvc,
		defaultUser: defaultUser,
	}
}

func (h *TriageHandler) Register(app fiber.Router) {
	emails := app.Group("/emails")
	emails.Get("/recent", h.Recent)
	emails.Get("/flagged", h.Flagged)
	emails.Get("/discarded", h.Discarded)
	emails.Post("/:id/read", h.MarkRead)
	emails.Post("/:id/discard", h.MarkDiscard)
	emails.Post("/:id/flag", h.ToggleFlag)

	app.Post("/reconcile", h.Reconcile)
	app.Post("/digest/run", h.RunDigest)
}

func (h *TriageHandler) userOf(c *fiber.Ctx) string {
	return c.Query("user", h.defaultUser)
}

func (h *TriageHandler) Recent(c *fiber.Ctx) error {
	userID := h.userOf(c)
	if userID == "" {
		return response.BadRequest(c, "user is required")
	}

	hours := c.QueryInt("hours", defaultRecentHours)
	if hours <= 0 {
		return response.BadRequest(c, "hours must be positive")
	}

	records, err := h.triage.Recent(c.Context(), userID, time.Duration(hours)*time.Hour)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, records, &response.Meta{Total: len(records)})
}

func (h *TriageHandler) Flagged(c *fiber.Ctx) error {
	userID := h.userOf(c)
	if userID == "" {
		return response.BadRequest(c, "user is required")
	}

	records, err := h.triage.Flagged(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, records, &response.Meta{Total: len(records)})
}

func (h *TriageHandler) Discarded(c *fiber.Ctx) error {
	userID := h.userOf(c)
	if userID == "" {
		return response.BadRequest(c, "user is required")
	}

	records, err := h.triage.Discarded(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, records, &response.Meta{Total: len(records)})
}

func (h *TriageHandler) MarkRead(c *fiber.Ctx) error {
	docID := c.Params("id")
	if docID == "" {
		return response.BadRequest(c, "email id is required")
	}

	if err := h.triage.MarkRead(c.Context(), docID); err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"id": docID, "is_read": true})
}

func (h *TriageHandler) MarkDiscard(c *fiber.Ctx) error {
	docID := c.Params("id")
	if docID == "" {
		return response.BadRequest(c, "email id is required")
	}

	if err := h.triage.MarkDiscard(c.Context(), docID); err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"id": docID, "discard": true})
}

func (h *TriageHandler) ToggleFlag(c *fiber.Ctx) error {
	docID := c.Params("id")
	if docID == "" {
		return response.BadRequest(c, "email id is required")
	}

	flagged, err := h.triage.ToggleFlag(c.Context(), docID)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"id": docID, "flag": flagged})
}

func (h *TriageHandler) Reconcile(c *fiber.Ctx) error {
	userID := h.userOf(c)
	if userID == "" {
		return response.BadRequest(c, "user is required")
	}

	removed, err := h.triage.Reconcile(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"user_id": userID, "removed": removed})
}

// RunDigest triggers a full fetch/summarize/persist cycle on demand.
// The same pipeline runs from the CLI in digest mode.
func (h *TriageHandler) RunDigest(c *fiber.Ctx) error {
	if h.digest == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "no mail provider configured")
	}

	userID := h.userOf(c)
	if userID == "" {
		return response.BadRequest(c, "user is required")
	}

	hours := c.QueryInt("hours", defaultRecentHours)
	if hours <= 0 {
		return response.BadRequest(c, "hours must be positive")
	}

	report := h.digest.Run(c.Context(), userID, time.Duration(hours)*time.Hour)
	return response.OK(c, report)
}
