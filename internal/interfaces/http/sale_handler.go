package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-pos/internal/application/dto"
	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
	"github.com/jhoicas/Inventario-pos/internal/domain/repository"
)

// SaleHandler maneja las peticiones HTTP del motor de ventas (protegido).
type SaleHandler struct {
	uc       *sales.SaleUseCase
	receipts *sales.ReceiptUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.SaleUseCase, receipts *sales.ReceiptUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, receipts: receipts}
}

// Create godoc
// @Summary      Crear venta
// @Description  Valida stock por sucursal, descuenta inventario y asigna el número SAL-YYYYMMDD-NNNN.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas de la venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	sale, err := h.uc.Create(c.UserContext(), userID, GetBranchID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SaleFromEntity(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        search         query  string  false  "Busca en número y notas"
// @Param        from           query  string  false  "Desde"
// @Param        to             query  string  false  "Hasta"
// @Param        branchId       query  string  false  "Sucursal"
// @Param        paymentStatus  query  string  false  "pending | partial | paid | refunded"
// @Param        kind           query  string  false  "sale | return | exchange"
// @Param        sortBy         query  string  false  "createdAt | total | saleNumber"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page, ok, err := bindPage(c)
	if !ok {
		return err
	}
	var q dto.SaleListQuery
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
	list, total, err := h.uc.List(c.UserContext(), repository.SaleFilter{
		Search:        q.Search,
		From:          from,
		To:            to,
		BranchID:      q.BranchID,
		PaymentStatus: entity.PaymentStatus(q.PaymentStatus),
		Kind:          entity.SaleKind(q.Kind),
		SortBy:        page.SortBy,
		SortDesc:      page.Desc(),
		Limit:         page.Limit,
		Offset:        page.Offset(),
	})
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.SaleFromEntity(s))
	}
	return c.JSON(dto.SaleListResponse{Items: items, Page: dto.NewPageResponse(page, total)})
}

// Get godoc
// @Summary      Detalle de venta con líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) Get(c *fiber.Ctx) error {
	sale, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// Delete godoc
// @Summary      Eliminar venta (administrador)
// @Description  Solo ventas no pagadas; los movimientos de stock de la venta se reversan.
// @Tags         sales
// @Security     Bearer
// @Param        id   path  string  true  "ID de la venta"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Hold godoc
// @Summary      Poner venta en espera
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/hold [post]
func (h *SaleHandler) Hold(c *fiber.Ctx) error {
	sale, err := h.uc.Hold(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// Resume godoc
// @Summary      Retomar venta en espera
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/resume [post]
func (h *SaleHandler) Resume(c *fiber.Ctx) error {
	sale, err := h.uc.Resume(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SaleFromEntity(sale))
}

// Refund godoc
// @Summary      Reembolsar venta (total o parcial)
// @Description  Crea una venta de devolución y reingresa el stock en la sucursal original.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la venta"
// @Param        body  body  dto.RefundRequest  true  "items vacío = reembolso total"
// @Success      201   {object}  dto.RefundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/refund [post]
func (h *SaleHandler) Refund(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RefundRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	res, err := h.uc.Refund(c.UserContext(), c.Params("id"), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RefundResponse{
		Original: dto.SaleFromEntity(res.Original),
		Return:   dto.SaleFromEntity(res.Return),
	})
}

// AddPayments godoc
// @Summary      Registrar pagos (split)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la venta"
// @Param        body  body  dto.SplitPaymentRequest  true  "Instrumentos de pago"
// @Success      201   {object}  dto.SplitPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payments [post]
func (h *SaleHandler) AddPayments(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.SplitPaymentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	sale, payments, err := h.uc.SplitPayment(c.UserContext(), c.Params("id"), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SplitPaymentResponse{
		Sale:     dto.SaleFromEntity(sale),
		Payments: dto.PaymentsFromEntities(payments),
	})
}

// ListPayments godoc
// @Summary      Pagos de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {array}  dto.PaymentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/payments [get]
func (h *SaleHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.uc.Payments(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PaymentsFromEntities(payments))
}

// DownloadReceipt godoc
// @Summary      Comprobante PDF de la venta
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SaleHandler) DownloadReceipt(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.receipts.DownloadReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
