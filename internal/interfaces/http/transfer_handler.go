package http

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TransferHandler maneja el ciclo de vida de traslados entre bodegas (protegido).
type TransferHandler struct {
	uc   *inventory.TransferUseCase
	slip inventory.SlipGenerator
}

// NewTransferHandler construye el handler. slip puede ser nil (sin remisión PDF).
func NewTransferHandler(uc *inventory.TransferUseCase, slip inventory.SlipGenerator) *TransferHandler {
	return &TransferHandler{uc: uc, slip: slip}
}

// Create godoc
// @Summary      Crear traslado
// @Description  Crea el traslado en PENDING (o DRAFT con draft=true) con número TRF-YYYYMMDD-NNNNN.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "bodegas y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.uc.Create(c.UserContext(), inventory.CreateTransferInput{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		TransferType:    entity.TransferType(in.TransferType),
		Notes:           in.Notes,
		Draft:           in.Draft,
		Items:           transferLines(in.Items),
		UserID:          userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(transferDTO(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status             query  string  false  "Estado"
// @Param        from_warehouse_id  query  string  false  "Bodega origen"
// @Param        to_warehouse_id    query  string  false  "Bodega destino"
// @Param        limit              query  int     false  "Máximo 500"
// @Param        offset             query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), repository.TransferFilter{
		Status:          entity.TransferStatus(c.Query("status")),
		FromWarehouseID: c.Query("from_warehouse_id"),
		ToWarehouseID:   c.Query("to_warehouse_id"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  page.Page(len(list)),
	}
	for _, t := range list {
		resp.Items = append(resp.Items, transferDTO(t))
	}
	return c.JSON(resp)
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	id, err := transferID(c)
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transferDTO(t))
}

// NextNumber godoc
// @Summary      Reservar número de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TransferNumberResponse
// @Router       /api/transfers/number [get]
func (h *TransferHandler) NextNumber(c *fiber.Ctx) error {
	n, err := h.uc.GenerateTransferNumber(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TransferNumberResponse{TransferNumber: n})
}

// ValidateAvailability godoc
// @Summary      Validar disponibilidad en bodega origen
// @Description  Solo lectura: devuelve las líneas cuya disponibilidad es menor a lo solicitado.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateAvailabilityRequest  true  "bodega y líneas"
// @Success      200   {object}  dto.AvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/validate-availability [post]
func (h *TransferHandler) ValidateAvailability(c *fiber.Ctx) error {
	var in dto.ValidateAvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	shortages, err := h.uc.ValidateAvailability(c.UserContext(), in.WarehouseID, transferLines(in.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{Available: len(shortages) == 0, Shortages: shortagesDTO(shortages)})
}

// Submit godoc
// @Summary      Enviar borrador (DRAFT → PENDING)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/submit [post]
func (h *TransferHandler) Submit(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Submit)
}

// Approve godoc
// @Summary      Aprobar traslado (PENDING → APPROVED)
// @Description  Todo o nada: si alguna línea no tiene disponibilidad responde 409 con los faltantes.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Approve)
}

// Ship godoc
// @Summary      Despachar traslado (APPROVED → SHIPPED); reserva en origen
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Ship)
}

// Complete godoc
// @Summary      Recibir traslado (SHIPPED → COMPLETED)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.uc.Complete)
}

// Cancel godoc
// @Summary      Cancelar traslado
// @Description  Desde SHIPPED libera las reservas en origen. COMPLETED y CANCELLED son terminales.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                         true   "ID del traslado"
// @Param        body  body  dto.CancelTransferRequest   false  "motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelTransferRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	return h.transition(c, func(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error) {
		return h.uc.Cancel(ctx, id, userID, in.Reason)
	})
}

// Slip godoc
// @Summary      Remisión PDF del traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del traslado"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/slip [get]
func (h *TransferHandler) Slip(c *fiber.Ctx) error {
	if h.slip == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "remisión PDF no configurada"})
	}
	id, err := transferID(c)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.uc.Slip(c.UserContext(), id, h.slip)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=traslado-%d.pdf", id))
	return c.Send(pdf)
}

func (h *TransferHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, id int64, userID string) (*entity.StockTransfer, error)) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	id, err := transferID(c)
	if err != nil {
		return writeError(c, err)
	}
	t, err := fn(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(transferDTO(t))
}

func transferID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id de traslado: %w", domain.ErrInvalidInput)
	}
	return id, nil
}
