package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del ledger y de la proyección de stock (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, stock: stock, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, warehouse_id (opcional), type, quantity, unit_cost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mt, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return writeError(c, domain.ErrInvalidMovementType)
	}
	rec, err := h.ledger.Record(c.UserContext(), inventory.MovementInput{
		ProductID:     in.ProductID,
		VariantID:     in.VariantID,
		WarehouseID:   in.WarehouseID,
		Type:          mt,
		Quantity:      in.Quantity,
		UnitCost:      in.UnitCost,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
		UserID:        userID,
		Notes:         in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementDTO(rec))
}

// ListMovements godoc
// @Summary      Consultar el ledger
// @Description  Filtros opcionales; from/to inclusivos (RFC3339 o YYYY-MM-DD). Orden: más reciente primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Producto"
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        type            query  string  false  "Tipo de movimiento"
// @Param        reference_type  query  string  false  "Tipo de referencia"
// @Param        reference_id    query  string  false  "Referencia"
// @Param        from            query  string  false  "Desde"
// @Param        to              query  string  false  "Hasta"
// @Param        limit           query  int     false  "Máximo 500"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()
	f := repository.MovementFilter{
		ProductID:     c.Query("product_id"),
		WarehouseID:   c.Query("warehouse_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	}
	if s := c.Query("type"); s != "" {
		mt, ok := entity.ParseMovementType(s)
		if !ok {
			return writeError(c, domain.ErrInvalidMovementType)
		}
		f.Type = mt
	}
	var err error
	if f.From, err = parseTimeQuery(c.Query("from"), false); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	if f.To, err = parseTimeQuery(c.Query("to"), true); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	list, err := h.ledger.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	resp := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  page.Page(len(list)),
	}
	for _, m := range list {
		resp.Items = append(resp.Items, movementDTO(m))
	}
	return c.JSON(resp)
}

// GetStock godoc
// @Summary      Proyección de stock por bodega y producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas las bodegas del producto)"
// @Param        product_id    query  string  true   "Producto"
// @Param        variant_id    query  string  false  "Variante"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	key := entity.StockKey{
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
		VariantID:   c.Query("variant_id"),
	}
	if key.WarehouseID == "" {
		list, err := h.stock.ListByProduct(c.UserContext(), key.ProductID)
		if err != nil {
			return writeError(c, err)
		}
		out := make([]dto.StockResponse, 0, len(list))
		for _, s := range list {
			out = append(out, stockDTO(s))
		}
		return c.JSON(out)
	}
	s, err := h.stock.Get(c.UserContext(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stockDTO(s))
}

// UpdateStock godoc
// @Summary      Corrección ad-hoc de stock en bodega
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateStockRequest  true  "warehouse_id, product_id, type, quantity"
// @Success      200   {object}  dto.UpdateStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [put]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mt, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return writeError(c, domain.ErrInvalidMovementType)
	}
	s, rec, err := h.stock.UpdateWarehouseStock(c.UserContext(), inventory.UpdateStockInput{
		Key:      entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID, VariantID: in.VariantID},
		Type:     mt,
		Quantity: in.Quantity,
		UnitCost: in.UnitCost,
		UserID:   userID,
		Notes:    in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.UpdateStockResponse{Stock: stockDTO(s), Movement: movementDTO(rec)})
}

// SetThresholds godoc
// @Summary      Umbrales de reposición (mínimo, máximo, punto de reorden)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ThresholdsRequest  true  "umbrales"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/thresholds [put]
func (h *InventoryHandler) SetThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.stock.SetThresholds(c.UserContext(), inventory.ThresholdsInput{
		Key:          entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID, VariantID: in.VariantID},
		MinLevel:     in.MinLevel,
		MaxLevel:     in.MaxLevel,
		ReorderPoint: in.ReorderPoint,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stockDTO(s))
}

// LowStock godoc
// @Summary      Proyecciones bajo punto de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {array}   dto.LowStockResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.stock.LowStock(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lowStockDTO(items))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Proyecciones bajo el punto de reorden con la cantidad sugerida de pedido, mayor déficit primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

// Reconcile godoc
// @Summary      Conciliar contador del producto con las proyecciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "Producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconciliation/{product_id} [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	r, err := h.stock.Reconcile(c.UserContext(), c.Params("product_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(reconciliationDTO(r))
}

// parseTimeQuery acepta RFC3339 o YYYY-MM-DD; con endOfDay una fecha sola cubre el día completo.
func parseTimeQuery(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
