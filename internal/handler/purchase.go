package handler

import (
	"net/http"

	"github.com/diogoammendes/SideSales/internal/models"
	"github.com/diogoammendes/SideSales/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseHandler serves the purchase pool and its nested contributions
// and additional costs.
type PurchaseHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewPurchaseHandler(db *gorm.DB, pageSize int) *PurchaseHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PurchaseHandler{DB: db, PageSize: pageSize}
}

func contributionJSON(pc *models.PurchaseContribution) gin.H {
	out := gin.H{
		"id":       pc.ID,
		"type":     pc.Type,
		"value":    pc.Value.StringFixed(money),
		"paid_on":  pc.PaidOn.Format("2006-01-02"),
		"notes":    pc.Notes,
		"payer_id": pc.PayerID,
	}
	if pc.Payer != nil {
		out["payer_name"] = pc.Payer.Name()
	}
	return out
}

func costJSON(ac *models.AdditionalCost) gin.H {
	out := gin.H{
		"id":          ac.ID,
		"label":       ac.Label,
		"amount":      ac.Amount.StringFixed(money),
		"incurred_on": ac.IncurredOn.Format("2006-01-02"),
		"paid_by_id":  ac.PaidByID,
	}
	if ac.PaidBy != nil {
		out["paid_by_name"] = ac.PaidBy.Name()
	}
	return out
}

func purchaseSummaryJSON(p *models.Purchase) gin.H {
	return gin.H{
		"id":            p.ID,
		"title":         p.Title,
		"purchased_on":  p.PurchasedOn.Format("2006-01-02"),
		"quantity":      p.Quantity.StringFixed(money),
		"unit_cost":     p.UnitCost.StringFixed(money),
		"signal_amount": p.SignalAmount.StringFixed(money),
		"total_cost":    p.TotalCost().StringFixed(money),
		"total_revenue": p.TotalRevenue().StringFixed(money),
		"total_profit":  p.TotalProfit().StringFixed(money),
	}
}

func purchaseDetailJSON(p *models.Purchase) gin.H {
	out := purchaseSummaryJSON(p)
	out["description"] = p.Description
	out["signal_paid_by_id"] = p.SignalPaidByID
	if p.SignalPaidOn != nil {
		out["signal_paid_on"] = p.SignalPaidOn.Format("2006-01-02")
	}

	totalBase := p.TotalBase()
	contributions := make([]gin.H, 0, len(p.Contributions))
	for i := range p.Contributions {
		pc := &p.Contributions[i]
		j := contributionJSON(pc)
		j["resolved_amount"] = pc.ResolvedAmount(totalBase).StringFixed(money)
		contributions = append(contributions, j)
	}
	out["contributions"] = contributions

	costs := make([]gin.H, 0, len(p.AdditionalCosts))
	for i := range p.AdditionalCosts {
		costs = append(costs, costJSON(&p.AdditionalCosts[i]))
	}
	out["additional_costs"] = costs

	sales := make([]gin.H, 0, len(p.Sales))
	for i := range p.Sales {
		sales = append(sales, saleSummaryJSON(&p.Sales[i]))
	}
	out["sales"] = sales
	return out
}

func (h *PurchaseHandler) List(c *gin.Context) {
	page, size := pagination(c, h.PageSize)

	var total int64
	if err := h.DB.Model(&models.Purchase{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to count purchases")
		return
	}

	var purchases []models.Purchase
	if err := h.DB.
		Preload("Contributions").
		Preload("AdditionalCosts").
		Preload("Sales").
		Order("purchased_on DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&purchases).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list purchases")
		return
	}

	out := make([]gin.H, 0, len(purchases))
	for i := range purchases {
		out = append(out, purchaseSummaryJSON(&purchases[i]))
	}
	util.Success(c, util.Response{
		"purchases": out,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

func (h *PurchaseHandler) loadPurchase(c *gin.Context, id uint) (*models.Purchase, bool) {
	var p models.Purchase
	err := h.DB.
		Preload("Contributions.Payer").
		Preload("AdditionalCosts.PaidBy").
		Preload("Sales.Payments").
		First(&p, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "purchase not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load purchase")
		}
		return nil, false
	}
	return &p, true
}

func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}
	p, ok := h.loadPurchase(c, id)
	if !ok {
		return
	}
	util.Success(c, util.Response{"purchase": purchaseDetailJSON(p)})
}

type purchaseReq struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity" binding:"required"`
	UnitCost     string `json:"unit_cost" binding:"required"`
	PurchasedOn  string `json:"purchased_on" binding:"required"`
	SignalAmount string `json:"signal_amount"`
	SignalPaidBy *uint  `json:"signal_paid_by_id"`
	SignalPaidOn string `json:"signal_paid_on"`
}

func (h *PurchaseHandler) apply(c *gin.Context, req *purchaseReq, p *models.Purchase) bool {
	quantity, err := util.ParseAmount(req.Quantity)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "quantity: "+err.Error())
		return false
	}
	unitCost, err := util.ParseAmount(req.UnitCost)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unit_cost: "+err.Error())
		return false
	}
	purchasedOn, err := util.ParseDate(req.PurchasedOn)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "purchased_on: "+err.Error())
		return false
	}

	p.Title = req.Title
	p.Description = req.Description
	p.Quantity = quantity
	p.UnitCost = unitCost
	p.PurchasedOn = purchasedOn

	if req.SignalAmount != "" {
		signal, err := decimal.NewFromString(req.SignalAmount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "signal_amount: invalid amount")
			return false
		}
		// zero is a valid signal deposit, same as omitting it
		if err := util.ValidateNonNegativeAmount(signal); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "signal_amount: "+err.Error())
			return false
		}
		p.SignalAmount = signal
		if signal.IsZero() {
			p.SignalPaidByID = nil
			p.SignalPaidOn = nil
			return true
		}
		if req.SignalPaidBy == nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "signal_paid_by_id is required with signal_amount")
			return false
		}
		if !h.userExists(c, *req.SignalPaidBy) {
			return false
		}
		p.SignalPaidByID = req.SignalPaidBy
		if req.SignalPaidOn != "" {
			paidOn, err := util.ParseDate(req.SignalPaidOn)
			if err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "signal_paid_on: "+err.Error())
				return false
			}
			p.SignalPaidOn = &paidOn
		} else {
			p.SignalPaidOn = &purchasedOn
		}
	} else {
		p.SignalAmount = decimal.Zero
		p.SignalPaidByID = nil
		p.SignalPaidOn = nil
	}
	return true
}

func (h *PurchaseHandler) userExists(c *gin.Context, id uint) bool {
	var count int64
	if err := h.DB.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to look up user")
		return false
	}
	if count == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "referenced user does not exist")
		return false
	}
	return true
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	var p models.Purchase
	if !h.apply(c, &req, &p) {
		return
	}
	if err := h.DB.Create(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create purchase")
		return
	}
	util.Success(c, util.Response{"purchase": purchaseDetailJSON(&p)})
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}

	var req purchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	p, ok := h.loadPurchase(c, id)
	if !ok {
		return
	}
	if !h.apply(c, &req, p) {
		return
	}
	if err := h.DB.Save(p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update purchase")
		return
	}
	util.Success(c, util.Response{"purchase": purchaseDetailJSON(p)})
}

// Delete removes the purchase with its contributions, costs, sales and
// payments in one transaction.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var p models.Purchase
		if err := tx.First(&p, id).Error; err != nil {
			return err
		}
		var saleIDs []uint
		if err := tx.Model(&models.Sale{}).
			Where("purchase_id = ?", id).
			Pluck("id", &saleIDs).Error; err != nil {
			return err
		}
		if len(saleIDs) > 0 {
			if err := tx.Where("sale_id IN ?", saleIDs).Delete(&models.SalePayment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&models.Sale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseContribution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&models.AdditionalCost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "purchase not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete purchase")
		}
		return
	}
	util.Success(c, util.Response{"message": "purchase deleted"})
}

type contributionReq struct {
	PayerID *uint  `json:"payer_id"`
	Type    string `json:"type" binding:"required"`
	Value   string `json:"value" binding:"required"`
	PaidOn  string `json:"paid_on" binding:"required"`
	Notes   string `json:"notes" binding:"max=255"`
}

func (h *PurchaseHandler) AddContribution(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}

	var req contributionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	if !models.ValidContributionType(req.Type) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type must be ABSOLUTE or PERCENTAGE")
		return
	}

	value, err := util.ParseAmount(req.Value)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value: "+err.Error())
		return
	}
	if req.Type == models.ContributionPercentage {
		if err := util.ValidatePercentage(value); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value: "+err.Error())
			return
		}
	}
	paidOn, err := util.ParseDate(req.PaidOn)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "paid_on: "+err.Error())
		return
	}
	if req.PayerID != nil && !h.userExists(c, *req.PayerID) {
		return
	}

	var p models.Purchase
	if err := h.DB.First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "purchase not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load purchase")
		}
		return
	}

	pc := models.PurchaseContribution{
		PurchaseID: p.ID,
		PayerID:    req.PayerID,
		Type:       req.Type,
		Value:      value,
		PaidOn:     paidOn,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&pc).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create contribution")
		return
	}

	j := contributionJSON(&pc)
	j["resolved_amount"] = pc.ResolvedAmount(p.TotalBase()).StringFixed(money)
	util.Success(c, util.Response{"contribution": j})
}

func (h *PurchaseHandler) DeleteContribution(c *gin.Context) {
	purchaseID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}
	contribID, ok := pathID(c, "cid")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid contribution id")
		return
	}

	res := h.DB.Where("id = ? AND purchase_id = ?", contribID, purchaseID).
		Delete(&models.PurchaseContribution{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete contribution")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "contribution not found")
		return
	}
	util.Success(c, util.Response{"message": "contribution deleted"})
}

type costReq struct {
	Label      string `json:"label" binding:"required,max=255"`
	Amount     string `json:"amount" binding:"required"`
	PaidByID   *uint  `json:"paid_by_id"`
	IncurredOn string `json:"incurred_on" binding:"required"`
}

func (h *PurchaseHandler) AddCost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}

	var req costReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	amount, err := util.ParseAmount(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount: "+err.Error())
		return
	}
	incurredOn, err := util.ParseDate(req.IncurredOn)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "incurred_on: "+err.Error())
		return
	}
	if req.PaidByID != nil && !h.userExists(c, *req.PaidByID) {
		return
	}

	var p models.Purchase
	if err := h.DB.First(&p, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "purchase not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load purchase")
		}
		return
	}

	ac := models.AdditionalCost{
		PurchaseID: p.ID,
		Label:      req.Label,
		Amount:     amount,
		PaidByID:   req.PaidByID,
		IncurredOn: incurredOn,
	}
	if err := h.DB.Create(&ac).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create additional cost")
		return
	}
	util.Success(c, util.Response{"additional_cost": costJSON(&ac)})
}

func (h *PurchaseHandler) DeleteCost(c *gin.Context) {
	purchaseID, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid purchase id")
		return
	}
	costID, ok := pathID(c, "cid")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid cost id")
		return
	}

	res := h.DB.Where("id = ? AND purchase_id = ?", costID, purchaseID).
		Delete(&models.AdditionalCost{})
	if res.Error != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete additional cost")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "additional cost not found")
		return
	}
	util.Success(c, util.Response{"message": "additional cost deleted"})
}
