package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"chefmenu/internal/sheet"
	"chefmenu/pkg/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type dishRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Course      string `json:"course"`
	Price       string `json:"price"`
}

func (r dishRequest) fields() domain.Fields {
	return domain.Fields{Name: r.Name, Description: r.Description, Course: r.Course, Price: r.Price}
}

func (h *handler) health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"status": "ok", "driver": h.repo.Store().Driver()})
}

func (h *handler) listDishes(c *gin.Context) {
	dishes, err := h.repo.List(c.Request.Context(), c.Query("course"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, dishes)
}

func (h *handler) getDish(c *gin.Context) {
	dish, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, dish)
}

func (h *handler) averagePrice(c *gin.Context) {
	dishes, err := h.repo.List(c.Request.Context(), c.Query("course"))
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, err := h.repo.AveragePrice(dishes)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"average": avg, "formatted": domain.FormatPrice(avg), "count": len(dishes)})
}

func (h *handler) bindDish(c *gin.Context) (domain.Fields, bool) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, domain.ValidationError{Field: "body", Reason: "expected a JSON object with string fields"})
		return domain.Fields{}, false
	}
	return req.fields(), true
}

func (h *handler) createDish(c *gin.Context) {
	fields, bound := h.bindDish(c)
	if !bound {
		return
	}
	created, dishes, err := h.repo.Create(c.Request.Context(), fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"dish": created, "dishes": dishes})
}

func (h *handler) updateDish(c *gin.Context) {
	fields, bound := h.bindDish(c)
	if !bound {
		return
	}
	updated, dishes, err := h.repo.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"dish": updated, "dishes": dishes})
}

func (h *handler) removeDish(c *gin.Context) {
	dishes, err := h.repo.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"dishes": dishes})
}

type rowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

func (h *handler) importDishes(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, domain.ValidationError{Field: "file", Reason: "multipart field file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	report, err := sheet.Import(c.Request.Context(), h.repo, f)
	if errors.Is(err, sheet.ErrWorkbook) {
		h.fail(c, domain.ValidationError{Field: "file", Reason: err.Error()})
		return
	}
	if err != nil {
		// rows before the failing one stay created
		created := report.Created
		if created == nil {
			created = []domain.Dish{}
		}
		h.log.WithFields(logrus.Fields{"created": len(created)}).Warn("menu import stopped")
		h.failWith(c, err, gin.H{"created": created})
		return
	}
	rejected := make([]rowError, 0, len(report.Rejected))
	for _, re := range report.Rejected {
		rejected = append(rejected, rowError{Row: re.Row, Error: re.Err.Error()})
	}
	h.log.WithFields(logrus.Fields{"created": len(report.Created), "rejected": len(rejected)}).Info("menu imported")
	ok(c, http.StatusOK, gin.H{"created": report.Created, "rejected": rejected})
}

func (h *handler) exportDishes(c *gin.Context) {
	dishes, err := h.repo.List(c.Request.Context(), c.Query("course"))
	if err != nil {
		h.fail(c, err)
		return
	}
	name := fmt.Sprintf("menu-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := sheet.Write(c.Writer, dishes); err != nil {
		h.log.WithError(err).Error("export failed")
	}
}
