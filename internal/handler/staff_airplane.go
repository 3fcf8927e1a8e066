package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ValenCardozo/volando-ando/internal/model"
	"github.com/ValenCardozo/volando-ando/internal/repository"
)

// AirplaneHandler serves the staff fleet endpoints: airplane CRUD,
// destructive seat layout generation and single-seat CRUD.
type AirplaneHandler struct {
	Airplanes *repository.AirplaneRepo
	Seats     *repository.SeatRepo
}

func NewAirplaneHandler(a *repository.AirplaneRepo, s *repository.SeatRepo) *AirplaneHandler {
	return &AirplaneHandler{Airplanes: a, Seats: s}
}

type airplaneReq struct {
	Model    string `json:"model"`
	Capacity uint32 `json:"capacity"`
	Rows     uint32 `json:"seat_rows"`
	Cols     uint32 `json:"seat_cols"`
}

func (r airplaneReq) validate() string {
	if strings.TrimSpace(r.Model) == "" {
		return "model required"
	}
	if r.Rows == 0 || r.Cols == 0 {
		return "seat_rows and seat_cols must be positive"
	}
	if r.Cols > 26 {
		return "seat_cols cannot exceed 26"
	}
	return ""
}

type airplaneResp struct {
	ID       uint64 `json:"id"`
	Model    string `json:"model"`
	Capacity uint32 `json:"capacity"`
	Rows     uint32 `json:"seat_rows"`
	Cols     uint32 `json:"seat_cols"`
}

func toAirplaneResp(a model.Airplane) airplaneResp {
	return airplaneResp{ID: a.ID, Model: a.Model, Capacity: a.Capacity, Rows: a.Rows, Cols: a.Cols}
}

type seatResp struct {
	ID         uint64 `json:"id"`
	AirplaneID uint64 `json:"airplane_id"`
	Number     string `json:"number"`
	Row        uint32 `json:"seat_row"`
	Col        uint32 `json:"seat_col"`
	Type       string `json:"seat_type"`
	Status     string `json:"status"`
}

func toSeatResp(s model.Seat) seatResp {
	return seatResp{ID: s.ID, AirplaneID: s.AirplaneID, Number: s.Number,
		Row: s.Row, Col: s.Col, Type: s.Type, Status: s.Status}
}

// Create registers a new airplane.  Capacity defaults to the full
// grid when omitted.
func (h *AirplaneHandler) Create(c echo.Context) error {
	var req airplaneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Capacity == 0 {
		req.Capacity = req.Rows * req.Cols
	}
	a := model.Airplane{Model: strings.TrimSpace(req.Model), Capacity: req.Capacity, Rows: req.Rows, Cols: req.Cols}
	if err := h.Airplanes.Create(c.Request().Context(), &a); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toAirplaneResp(a))
}

// List returns the fleet.
func (h *AirplaneHandler) List(c echo.Context) error {
	planes, err := h.Airplanes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]airplaneResp, 0, len(planes))
	for _, a := range planes {
		out = append(out, toAirplaneResp(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one airplane with its seats.
func (h *AirplaneHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.Airplanes.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	seats, err := h.Seats.GetByAirplane(ctx, a.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]seatResp, 0, len(seats))
	for _, s := range seats {
		out = append(out, toSeatResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"airplane": toAirplaneResp(*a), "seats": out})
}

// Update rewrites an airplane's attributes.  Shrinking the grid does
// not touch existing seats; regenerate the layout for that.
func (h *AirplaneHandler) Update(c echo.Context) error {
	var req airplaneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if req.Capacity == 0 {
		req.Capacity = req.Rows * req.Cols
	}
	a := model.Airplane{ID: pathID(c, "id"), Model: strings.TrimSpace(req.Model),
		Capacity: req.Capacity, Rows: req.Rows, Cols: req.Cols}
	if err := h.Airplanes.Update(c.Request().Context(), &a); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toAirplaneResp(a))
}

// Delete removes an airplane and its seats.  Blocked while flights
// reference the airplane.
func (h *AirplaneHandler) Delete(c echo.Context) error {
	if err := h.Airplanes.Delete(c.Request().Context(), pathID(c, "id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type generateLayoutReq struct {
	SeatType string `json:"seat_type"` // defaults to economy
}

// GenerateLayout wipes and rebuilds the airplane's seat grid in one
// transaction: rows x cols seats labeled {row}{columnLetter}, all
// available.  Refused while any reservation still references one of
// the airplane's seats.
func (h *AirplaneHandler) GenerateLayout(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.Airplanes.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	var req generateLayoutReq
	_ = c.Bind(&req)
	seatType := strings.ToLower(strings.TrimSpace(req.SeatType))
	if seatType == "" {
		seatType = model.SeatEconomy
	}
	if !model.ValidSeatType(seatType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat type"})
	}

	tx, err := h.Seats.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var refs int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations r JOIN seats s ON s.id = r.seat_id WHERE s.airplane_id = ?`,
		a.ID).Scan(&refs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if refs > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats are referenced by reservations"})
	}

	if err := h.Seats.DeleteByAirplaneTx(ctx, tx, a.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats := model.BuildLayout(*a, seatType)
	if err := h.Seats.CreateBulkTx(ctx, tx, seats); err != nil {
		return writeError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{
		"airplane_id": a.ID,
		"seat_type":   seatType,
		"seats":       len(seats),
	})
}

type seatReq struct {
	Number string `json:"number"`
	Row    uint32 `json:"seat_row"`
	Col    uint32 `json:"seat_col"`
	Type   string `json:"seat_type"`
}

// CreateSeat adds one seat to an airplane, for layouts the generator
// cannot express.
func (h *AirplaneHandler) CreateSeat(c echo.Context) error {
	ctx := c.Request().Context()
	a, err := h.Airplanes.GetByID(ctx, pathID(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Row == 0 || req.Col == 0 || req.Col > 26 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_row and seat_col must be valid grid positions"})
	}
	seatType := strings.ToLower(strings.TrimSpace(req.Type))
	if seatType == "" {
		seatType = model.SeatEconomy
	}
	if !model.ValidSeatType(seatType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat type"})
	}
	number := strings.ToUpper(strings.TrimSpace(req.Number))
	if number == "" {
		number = model.SeatLabel(req.Row, req.Col)
	}
	s := model.Seat{
		AirplaneID: a.ID,
		Number:     number,
		Row:        req.Row,
		Col:        req.Col,
		Type:       seatType,
		Status:     model.SeatAvailable,
	}
	if err := h.Seats.Create(ctx, &s); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toSeatResp(s))
}

// UpdateSeat rewrites a seat's number, position or class.  Status is
// owned by the reservation engine and cannot be set here.
func (h *AirplaneHandler) UpdateSeat(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Seats.GetByID(ctx, pathID(c, "seatID"))
	if err != nil {
		return writeError(c, err)
	}
	var req seatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Row != 0 {
		s.Row = req.Row
	}
	if req.Col != 0 {
		if req.Col > 26 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_col cannot exceed 26"})
		}
		s.Col = req.Col
	}
	if t := strings.ToLower(strings.TrimSpace(req.Type)); t != "" {
		if !model.ValidSeatType(t) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat type"})
		}
		s.Type = t
	}
	if n := strings.ToUpper(strings.TrimSpace(req.Number)); n != "" {
		s.Number = n
	}
	if err := h.Seats.Update(ctx, s); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toSeatResp(*s))
}

// DeleteSeat removes one seat.  Seats referenced by reservations are
// protected.
func (h *AirplaneHandler) DeleteSeat(c echo.Context) error {
	if err := h.Seats.Delete(c.Request().Context(), pathID(c, "seatID")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
