package handler

import (
	"net/http"

	"github.com/diogoammendes/SideSales/internal/models"
	"github.com/diogoammendes/SideSales/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SaleHandler serves sales and the payments received against them.
type SaleHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewSaleHandler(db *gorm.DB, pageSize int) *SaleHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &SaleHandler{DB: db, PageSize: pageSize}
}

func paymentJSON(sp *models.SalePayment) gin.H {
	out := gin.H{
		"id":          sp.ID,
		"receiver_id": sp.ReceiverID,
		"amount":      sp.Amount.StringFixed(money),
		"method":      sp.Method,
		"paid_on":     sp.PaidOn.Format("2006-01-02"),
		"notes":       sp.Notes,
	}
	if sp.Receiver.ID != 0 {
		out["receiver_name"] = sp.Receiver.Name()
	}
	return out
}

func saleSummaryJSON(s *models.Sale) gin.H {
	return gin.H{
		"id":          s.ID,
		"purchase_id": s.PurchaseID,
		"buyer_name":  s.BuyerName,
		"quantity":    s.Quantity.StringFixed(money),
		"unit_price":  s.UnitPrice.StringFixed(money),
		"sold_on":     s.SoldOn.Format("2006-01-02"),
		"status":      s.Status,
		"total_price": s.TotalPrice().StringFixed(money),
		"outstanding": s.OutstandingAmount().StringFixed(money),
	}
}

func saleDetailJSON(s *models.Sale) gin.H {
	out := saleSummaryJSON(s)
	out["buyer_description"] = s.BuyerDescription
	out["notes"] = s.Notes
	out["total_payments"] = s.TotalPayments().StringFixed(money)

	payments := make([]gin.H, 0, len(s.Payments))
	for i := range s.Payments {
		payments = append(payments, paymentJSON(&s.Payments[i]))
	}
	out["payments"] = payments
	return out
}

// List returns sales, optionally filtered by ?purchase_id= and ?status=.
func (h *SaleHandler) List(c *gin.Context) {
	page, size := pagination(c, h.PageSize)

	q := h.DB.Model(&models.Sale{})
	if pid := c.Query("purchase_id"); pid != "" {
		q = q.Where("purchase_id = ?", pid)
	}
	if status := c.Query("status"); status != "" {
		if !models.ValidSaleStatus(status) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown sale status")
			return
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count sales")
		return
	}

	var sales []models.Sale
	if err := q.
		Preload("Payments").
		Order("sold_on DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&sales).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list sales")
		return
	}

	out := make([]gin.H, 0, len(sales))
	for i := range sales {
		out = append(out, saleSummaryJSON(&sales[i]))
	}
	util.Success(c, util.Response{
		"sales":     out,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sale id")
		return
	}

	var s models.Sale
	if err := h.DB.Preload("Payments.Receiver").First(&s, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "sale not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sale")
		}
		return
	}
	util.Success(c, util.Response{"sale": saleDetailJSON(&s)})
}

type saleReq struct {
	PurchaseID       uint   `json:"purchase_id" binding:"required"`
	BuyerName        string `json:"buyer_name" binding:"required,max=255"`
	BuyerDescription string `json:"buyer_description"`
	Quantity         string `json:"quantity" binding:"required"`
	UnitPrice        string `json:"unit_price" binding:"required"`
	SoldOn           string `json:"sold_on" binding:"required"`
	Status           string `json:"status"`
	Notes            string `json:"notes"`
}

func (h *SaleHandler) apply(c *gin.Context, req *saleReq, s *models.Sale) bool {
	quantity, err := util.ParseAmount(req.Quantity)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "quantity: "+err.Error())
		return false
	}
	unitPrice, err := util.ParseAmount(req.UnitPrice)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unit_price: "+err.Error())
		return false
	}
	soldOn, err := util.ParseDate(req.SoldOn)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "sold_on: "+err.Error())
		return false
	}
	if req.Status == "" {
		req.Status = models.SaleDraft
	}
	if !models.ValidSaleStatus(req.Status) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown sale status")
		return false
	}

	var count int64
	if err := h.DB.Model(&models.Purchase{}).Where("id = ?", req.PurchaseID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up purchase")
		return false
	}
	if count == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "purchase does not exist")
		return false
	}

	s.PurchaseID = req.PurchaseID
	s.BuyerName = req.BuyerName
	s.BuyerDescription = req.BuyerDescription
	s.Quantity = quantity
	s.UnitPrice = unitPrice
	s.SoldOn = soldOn
	s.Status = req.Status
	s.Notes = req.Notes
	return true
}

func (h *SaleHandler) Create(c *gin.Context) {
	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var s models.Sale
	if !h.apply(c, &req, &s) {
		return
	}
	if err := h.DB.Create(&s).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sale")
		return
	}
	util.Success(c, util.Response{"sale": saleDetailJSON(&s)})
}

func (h *SaleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sale id")
		return
	}

	var req saleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var s models.Sale
	if err := h.DB.Preload("Payments").First(&s, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "sale not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sale")
		}
		return
	}
	if !h.apply(c, &req, &s) {
		return
	}
	if err := h.DB.Save(&s).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update sale")
		return
	}
	util.Success(c, util.Response{"sale": saleDetailJSON(&s)})
}

func (h *SaleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sale id")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var s models.Sale
		if err := tx.First(&s, id).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", id).Delete(&models.SalePayment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&s).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "sale not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete sale")
		}
		return
	}
	util.Success(c, util.Response{"message": "sale deleted"})
}

type paymentReq struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	Method     string `json:"method" binding:"required"`
	PaidOn     string `json:"paid_on" binding:"required"`
	Notes      string `json:"notes" binding:"max=255"`
}

func (h *SaleHandler) AddPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sale id")
		return
	}

	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount: "+err.Error())
		return
	}
	if !models.ValidPaymentMethod(req.Method) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown payment method")
		return
	}
	paidOn, err := util.ParseDate(req.PaidOn)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "paid_on: "+err.Error())
		return
	}

	var receiver models.User
	if err := h.DB.First(&receiver, req.ReceiverID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "receiver does not exist")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up receiver")
		}
		return
	}

	var s models.Sale
	if err := h.DB.First(&s, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "sale not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load sale")
		}
		return
	}

	sp := models.SalePayment{
		SaleID:     s.ID,
		ReceiverID: receiver.ID,
		Amount:     amount,
		Method:     req.Method,
		PaidOn:     paidOn,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&sp).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create payment")
		return
	}
	sp.Receiver = receiver
	util.Success(c, util.Response{"payment": paymentJSON(&sp)})
}

func (h *SaleHandler) DeletePayment(c *gin.Context) {
	saleID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid sale id")
		return
	}
	paymentID, ok := pathID(c, "pid")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid payment id")
		return
	}

	res := h.DB.Where("id = ? AND sale_id = ?", paymentID, saleID).
		Delete(&models.SalePayment{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete payment")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "payment not found")
		return
	}
	util.Success(c, util.Response{"message": "payment deleted"})
}
