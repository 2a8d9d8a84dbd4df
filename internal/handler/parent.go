package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/amielle/duty-roster/internal/repository"
)

// ParentHandler serves the parent portal: a read-only view of linked
// students' duties plus the link operation itself.
type ParentHandler struct {
	Users    *repository.UserRepo
	Bookings *repository.BookingRepo
	Log      *zap.Logger
}

// NewParentHandler constructs a ParentHandler.
func NewParentHandler(users *repository.UserRepo, bookings *repository.BookingRepo, log *zap.Logger) *ParentHandler {
	if users == nil || bookings == nil {
		panic("nil repository passed to NewParentHandler")
	}
	return &ParentHandler{Users: users, Bookings: bookings, Log: log}
}

// ChildrenDuties handles GET /v1/children/duties.  It returns every duty
// of every linked student with the derived approval state.
func (h *ParentHandler) ChildrenDuties(c echo.Context) error {
	parentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	duties, err := h.Bookings.ListForParent(c.Request().Context(), parentID)
	if err != nil {
		h.Log.Error("list children duties failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load duties"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": duties})
}

type linkChildReq struct {
	StudentNumber string `json:"student_number"`
}

// LinkChild handles POST /v1/children.  The parent supplies a
// college student number; if a student account with that number exists
// a read-only link is created.  Linking the same student twice is
// accepted silently.
func (h *ParentHandler) LinkChild(c echo.Context) error {
	parentID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req linkChildReq
	if err := c.Bind(&req); err != nil || req.StudentNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "student_number is required"})
	}
	ctx := c.Request().Context()
	student, err := h.Users.FindStudentByNumber(ctx, req.StudentNumber)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no student with that number"})
	}
	if err != nil {
		h.Log.Error("find student failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to look up student"})
	}
	if err := h.Users.LinkChild(ctx, parentID, student.ID); err != nil {
		h.Log.Error("link child failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to link student"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "student linked",
		"student": echo.Map{
			"id":             student.ID,
			"full_name":      student.FullName,
			"student_number": student.StudentNumber,
		},
	})
}
