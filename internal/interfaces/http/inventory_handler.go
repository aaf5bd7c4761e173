package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/inventory"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment}
}

// RecordMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "item_id, location_id, kind, quantity, unit_cost"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RecordMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.RecordMovement(c.UserContext(), inventory.MovementInput{
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Kind:            entity.MovementKind(in.Kind),
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		BatchNumber:     in.BatchNumber,
		SerialNumber:    in.SerialNumber,
		ExpiryDate:      in.ExpiryDate,
		ReferenceType:   in.ReferenceType,
		ReferenceID:     in.ReferenceID,
		Pending:         in.Pending,
		Notes:           in.Notes,
		TransactionDate: in.TransactionDate,
		UserID:          userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// ListMovements godoc
// @Summary      Listar movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      query  string  false  "Producto"
// @Param        locationId  query  string  false  "Ubicación"
// @Param        kind        query  string  false  "Tipo"
// @Param        status      query  string  false  "completed | pending | cancelled"
// @Param        from        query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to          query  string  false  "Hasta"
// @Param        sortBy      query  string  false  "transactionDate | createdAt | quantity"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	page, ok, err := bindPage(c)
	if !ok {
		return err
	}
	var q dto.MovementListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	from, err := parseTime(q.From, false)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	to, err := parseTime(q.To, true)
	if err != nil {
		return badRequest(c, "INVALID_QUERY", err.Error())
	}
	list, total, err := h.ledger.ListMovements(c.UserContext(), repository.MovementFilter{
		ItemID:        q.ItemID,
		LocationID:    q.LocationID,
		Kind:          entity.MovementKind(q.Kind),
		Status:        q.Status,
		ReferenceType: q.ReferenceType,
		ReferenceID:   q.ReferenceID,
		From:          from,
		To:            to,
		SortBy:        page.SortBy,
		SortDesc:      page.Desc(),
		Limit:         page.Limit,
		Offset:        page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementListResponse{Items: dto.MovementsFromEntities(list), Page: dto.NewPageResponse(page, total)})
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.GetMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// CorrectMovement godoc
// @Summary      Corregir movimiento (anula y registra uno nuevo)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del movimiento"
// @Param        body  body  dto.CorrectMovementRequest  true  "Campos corregidos"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [put]
func (h *InventoryHandler) CorrectMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CorrectMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.CorrectMovement(c.UserContext(), c.Params("id"), inventory.MovementInput{
		LocationID:   in.LocationID,
		Kind:         entity.MovementKind(in.Kind),
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		BatchNumber:  in.BatchNumber,
		SerialNumber: in.SerialNumber,
		ExpiryDate:   in.ExpiryDate,
		Notes:        in.Notes,
		UserID:       userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// DeleteMovement godoc
// @Summary      Eliminar movimiento (reversa y marca anulado)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.DeleteMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// CancelMovement godoc
// @Summary      Anular movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/cancel [post]
func (h *InventoryHandler) CancelMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.CancelMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// CompleteMovement godoc
// @Summary      Completar movimiento pendiente
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/complete [post]
func (h *InventoryHandler) CompleteMovement(c *fiber.Ctx) error {
	mov, err := h.ledger.CompleteMovement(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementFromEntity(mov))
}

// Adjust godoc
// @Summary      Ajuste de inventario (delta o conteo físico)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "delta o counted_quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.Adjust(c.UserContext(), inventory.AdjustInput{
		ItemID:          in.ItemID,
		LocationID:      in.LocationID,
		Delta:           in.Delta,
		CountedQuantity: in.CountedQuantity,
		UnitCost:        in.UnitCost,
		Reason:          in.Reason,
		UserID:          userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// WriteOff godoc
// @Summary      Baja de mercancía (pérdida o daño)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WriteOffRequest  true  "Producto, ubicación y cantidad"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/write-offs [post]
func (h *InventoryHandler) WriteOff(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.WriteOffRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	mov, err := h.ledger.WriteOff(c.UserContext(), inventory.WriteOffInput{
		ItemID:       in.ItemID,
		LocationID:   in.LocationID,
		Quantity:     in.Quantity,
		Damaged:      in.Damaged,
		BatchNumber:  in.BatchNumber,
		SerialNumber: in.SerialNumber,
		Reason:       in.Reason,
		UserID:       userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementFromEntity(mov))
}

// Transfer godoc
// @Summary      Transferir stock entre ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.ledger.Transfer(c.UserContext(), inventory.TransferInput{
		ItemID:         in.ItemID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		BatchNumber:    in.BatchNumber,
		Notes:          in.Notes,
		UserID:         userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Reference: res.Reference,
		Out:       dto.MovementFromEntity(res.Out),
		In:        dto.MovementFromEntity(res.In),
	})
}

// ListBalances godoc
// @Summary      Saldos por producto y ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        itemId      query  string  false  "Producto"
// @Param        locationId  query  string  false  "Ubicación"
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	page, ok, err := bindPage(c)
	if !ok {
		return err
	}
	list, total, err := h.ledger.ListBalances(c.UserContext(), repository.BalanceFilter{
		ItemID:     c.Query("itemId"),
		LocationID: c.Query("locationId"),
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalanceListResponse{Items: dto.BalancesFromEntities(list), Page: dto.NewPageResponse(page, total)})
}

// SetThresholds godoc
// @Summary      Fijar umbral de stock bajo y punto de reorden
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ThresholdsRequest  true  "Umbrales"
// @Success      200   {object}  dto.BalanceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/thresholds [put]
func (h *InventoryHandler) SetThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdsRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	b, err := h.ledger.SetThresholds(c.UserContext(), inventory.ThresholdsInput{
		ItemID:            in.ItemID,
		LocationID:        in.LocationID,
		LowStockThreshold: in.LowStockThreshold,
		ReorderPoint:      in.ReorderPoint,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalanceFromEntity(b))
}

// LowStock godoc
// @Summary      Saldos con stock bajo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        locationId  query  string  false  "Ubicación"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.ledger.LowStock(c.UserContext(), c.Query("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalancesFromEntities(list))
}

// OutOfStock godoc
// @Summary      Saldos agotados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        locationId  query  string  false  "Ubicación"
// @Success      200  {array}  dto.BalanceResponse
// @Router       /api/inventory/out-of-stock [get]
func (h *InventoryHandler) OutOfStock(c *fiber.Ctx) error {
	list, err := h.ledger.OutOfStock(c.UserContext(), c.Query("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.BalancesFromEntities(list))
}

// ByBatch godoc
// @Summary      Movimientos de un lote
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        batchNumber  path  string  true  "Lote"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/batches/{batchNumber} [get]
func (h *InventoryHandler) ByBatch(c *fiber.Ctx) error {
	list, err := h.ledger.MovementsByBatch(c.UserContext(), c.Params("batchNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// BySerial godoc
// @Summary      Movimientos de un número de serie
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        serialNumber  path  string  true  "Serial"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/serials/{serialNumber} [get]
func (h *InventoryHandler) BySerial(c *fiber.Ctx) error {
	list, err := h.ledger.MovementsBySerial(c.UserContext(), c.Params("serialNumber"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// Expiring godoc
// @Summary      Lotes por vencer
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (por defecto la configurada)"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/expiring [get]
func (h *InventoryHandler) Expiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", 0)
	if days < 0 {
		return badRequest(c, "INVALID_QUERY", "days no puede ser negativo")
	}
	list, err := h.ledger.Expiring(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// Expired godoc
// @Summary      Lotes vencidos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/expired [get]
func (h *InventoryHandler) Expired(c *fiber.Ctx) error {
	list, err := h.ledger.Expired(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementsFromEntities(list))
}

// Statistics godoc
// @Summary      Estadísticas del inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StatisticsResponse
// @Router       /api/inventory/statistics [get]
func (h *InventoryHandler) Statistics(c *fiber.Ctx) error {
	st, err := h.ledger.Statistics(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := dto.StatisticsResponse{
		Items:           st.Summary.Items,
		Balances:        st.Summary.Balances,
		TotalQuantity:   st.Summary.TotalQuantity,
		TotalValue:      st.Summary.TotalValue,
		LowStockCount:   st.Summary.LowStockCount,
		OutOfStockCount: st.Summary.OutOfStockCount,
		ValueByLocation: make([]dto.LocationValueDTO, 0, len(st.ValueByLocation)),
		MovementsByKind: make(map[string]int, len(st.MovementsByKind)),
	}
	for _, lv := range st.ValueByLocation {
		out.ValueByLocation = append(out.ValueByLocation, dto.LocationValueDTO{
			LocationID: lv.LocationID, Quantity: lv.Quantity, Value: lv.Value,
		})
	}
	for k, n := range st.MovementsByKind {
		out.MovementsByKind[string(k)] = n
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Saldos en o bajo su punto de reorden con la cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        locationId  query  string  false  "Filtrar por ubicación. Vacío = todas."
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("locationId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
