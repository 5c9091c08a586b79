package handler

import (
	"net/http"

	"github.com/diogoammendes/SideSales/internal/ledger"
	"github.com/diogoammendes/SideSales/internal/models"
	"github.com/diogoammendes/SideSales/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DashboardHandler builds the per-user ledger view: who put what in, who
// took what out, and what a fair split would look like.
type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

func rowJSON(r *ledger.Row) gin.H {
	return gin.H{
		"user_id":             r.UserID,
		"username":            r.Username,
		"display_name":        r.DisplayName,
		"role":                r.Role,
		"invested":            r.Invested.StringFixed(money),
		"received_actual":     r.ReceivedActual.StringFixed(money),
		"received_attributed": r.ReceivedAttributed.StringFixed(money),
		"real_balance":        r.RealBalance.StringFixed(money),
		"attributed_balance":  r.AttributedBalance.StringFixed(money),
	}
}

// Dashboard loads the full purchase snapshot, runs the aggregator and
// returns pool totals, ledger rows and per-purchase summaries.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	var purchases []models.Purchase
	if err := h.DB.
		Preload("Contributions").
		Preload("AdditionalCosts").
		Preload("Sales.Payments").
		Order("purchased_on DESC, id DESC").
		Find(&purchases).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load purchases")
		return
	}

	var activeUsers []models.User
	if err := h.DB.
		Where("active = ?", true).
		Order("id").
		Find(&activeUsers).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load users")
		return
	}

	rows := ledger.Aggregate(purchases, activeUsers)
	totals := ledger.PoolTotals(purchases)

	rowsOut := make([]gin.H, 0, len(rows))
	for i := range rows {
		rowsOut = append(rowsOut, rowJSON(&rows[i]))
	}

	purchasesOut := make([]gin.H, 0, len(purchases))
	for i := range purchases {
		purchasesOut = append(purchasesOut, purchaseSummaryJSON(&purchases[i]))
	}

	util.Success(c, util.Response{
		"totals": gin.H{
			"invested": totals.Invested.StringFixed(money),
			"revenue":  totals.Revenue.StringFixed(money),
			"profit":   totals.Profit.StringFixed(money),
		},
		"ledger":    rowsOut,
		"purchases": purchasesOut,
	})
}
