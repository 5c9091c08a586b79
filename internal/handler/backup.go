package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/diogoammendes/SideSales/internal/models"
	"github.com/diogoammendes/SideSales/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler writes and restores JSON snapshots of the whole ledger.
// Admin only.
type BackupHandler struct {
	DB        *gorm.DB
	BackupDir string
}

func NewBackupHandler(db *gorm.DB, backupDir string) *BackupHandler {
	return &BackupHandler{DB: db, BackupDir: backupDir}
}

// backupData is the snapshot file layout. Users are included so restored
// foreign keys resolve.
type backupData struct {
	Created   time.Time                     `json:"created"`
	Users     []models.User                 `json:"users"`
	Purchases []models.Purchase             `json:"purchases"`
	Contribs  []models.PurchaseContribution `json:"contributions"`
	Costs     []models.AdditionalCost       `json:"additional_costs"`
	Sales     []models.Sale                 `json:"sales"`
	Payments  []models.SalePayment          `json:"payments"`
}

func (h *BackupHandler) collect() (*backupData, error) {
	data := &backupData{Created: time.Now()}
	if err := h.DB.Order("id").Find(&data.Users).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("id").Find(&data.Purchases).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("id").Find(&data.Contribs).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("id").Find(&data.Costs).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("id").Find(&data.Sales).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("id").Find(&data.Payments).Error; err != nil {
		return nil, err
	}
	return data, nil
}

// CreateBackup snapshots the database into a JSON file in the backup dir.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
		return
	}

	data, err := h.collect()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read data")
		return
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to serialize snapshot")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create backup dir")
		return
	}

	fileName := fmt.Sprintf("backup-%s.json", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, raw, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write backup file")
		return
	}

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(raw)),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to record backup")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	var backups []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&backups).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list backups")
		return
	}

	out := make([]gin.H, 0, len(backups))
	for _, b := range backups {
		out = append(out, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}
	util.Success(c, util.Response{"backups": out})
}

func (h *BackupHandler) loadBackup(c *gin.Context) (*models.Backup, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid backup id")
		return nil, false
	}
	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load backup")
		}
		return nil, false
	}
	return &backup, true
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.loadBackup(c)
	if !ok {
		return
	}
	if _, err := os.Stat(backup.FilePath); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup file missing on disk")
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// RestoreBackup replaces every ledger table with the snapshot's content
// in a single transaction.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.loadBackup(c)
	if !ok {
		return
	}

	raw, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup file missing on disk")
		return
	}

	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "backup file is corrupt")
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.SalePayment{}, &models.Sale{},
			&models.PurchaseContribution{}, &models.AdditionalCost{},
			&models.Purchase{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		// users are upserted, never deleted: the restoring admin keeps
		// their account even if it postdates the snapshot
		for i := range data.Users {
			if err := tx.Save(&data.Users[i]).Error; err != nil {
				return err
			}
		}
		if len(data.Purchases) > 0 {
			if err := tx.Create(&data.Purchases).Error; err != nil {
				return err
			}
		}
		if len(data.Contribs) > 0 {
			if err := tx.Create(&data.Contribs).Error; err != nil {
				return err
			}
		}
		if len(data.Costs) > 0 {
			if err := tx.Create(&data.Costs).Error; err != nil {
				return err
			}
		}
		if len(data.Sales) > 0 {
			if err := tx.Create(&data.Sales).Error; err != nil {
				return err
			}
		}
		if len(data.Payments) > 0 {
			if err := tx.Create(&data.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "restore failed, database unchanged")
		return
	}

	util.Success(c, util.Response{"message": "backup restored"})
}

func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.loadBackup(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete backup")
		return
	}
	_ = os.Remove(backup.FilePath)

	util.Success(c, util.Response{"message": "backup deleted"})
}
