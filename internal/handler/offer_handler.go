package handler

import (
	"encoding/json"
	"net/http"

	"coderr/internal/middleware"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /offers と /offerdetails
type OfferHandler struct {
	uc *usecase.OfferUsecase
}

// DI
func NewOfferHandler(uc *usecase.OfferUsecase) *OfferHandler {
	return &OfferHandler{uc: uc}
}

// nilは「キーがなかった」。featuresはnullも未指定扱い。
type DetailRequest struct {
	ID                 *int64           `json:"id"`
	Title              *string          `json:"title"`
	OfferType          *string          `json:"offer_type"`
	Revisions          *int             `json:"revisions"`
	DeliveryTimeInDays *int             `json:"delivery_time_in_days"`
	Price              *decimal.Decimal `json:"price"`
	Features           []string         `json:"features"`
}

type OfferCreateRequest struct {
	Title       string          `json:"title"`
	Image       *string         `json:"image"`
	Description string          `json:"description"`
	Details     []DetailRequest `json:"details"`
}

// imageだけは「キーなし」と「null」を区別する
type OfferUpdateRequest struct {
	Title       *string         `json:"title"`
	Image       nullableString  `json:"image"`
	Description *string         `json:"description"`
	Details     []DetailRequest `json:"details"`
}

// キーが来たらSetがtrue。nullならValueはnil。
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n nullableString) cleared() bool {
	return n.Set && n.Value == nil
}

// ルート登録（gは認証済みのグループ）
func (h *OfferHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/offers", h.list)
	g.POST("/offers", h.create)
	g.GET("/offers/:id", h.detail)
	g.PATCH("/offers/:id", h.update)
	g.DELETE("/offers/:id", h.delete)
	g.GET("/offerdetails/:id", h.offerDetail)
}

func toDetailInputs(reqs []DetailRequest) []usecase.DetailInput {
	if reqs == nil {
		return nil
	}
	out := make([]usecase.DetailInput, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, usecase.DetailInput{
			ID:                 r.ID,
			Title:              r.Title,
			OfferType:          r.OfferType,
			Revisions:          r.Revisions,
			DeliveryTimeInDays: r.DeliveryTimeInDays,
			Price:              r.Price,
			Features:           r.Features,
		})
	}
	return out
}

func (h *OfferHandler) list(c echo.Context) error {
	out, err := h.uc.ListOffers(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) create(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OfferCreateRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	out, err := h.uc.CreateOffer(c.Request().Context(), caller, usecase.CreateOfferInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Details:     toDetailInputs(req.Details),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OfferHandler) detail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.GetOffer(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) update(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OfferUpdateRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	out, err := h.uc.UpdateOffer(c.Request().Context(), caller, id, usecase.UpdateOfferInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image.Value,
		ClearImage:  req.Image.cleared(),
		Details:     toDetailInputs(req.Details),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OfferHandler) delete(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteOffer(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OfferHandler) offerDetail(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	out, err := h.uc.GetOfferDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
