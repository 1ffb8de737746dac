package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-hazardwatch/auth"
	"go-hazardwatch/lifecycle"
	"go-hazardwatch/mlmodel"
	"go-hazardwatch/query"
	"go-hazardwatch/scoring"
	"go-hazardwatch/store"
	"go-hazardwatch/types"
	"go-hazardwatch/uploads"
)

// CreateReport handles report intake: validate, store the optional photo,
// invoke the classifier (image-present reports only), derive authenticity
// and persist. Classifier trouble degrades the stored record instead of
// failing the request.
func CreateReport(c *gin.Context, st store.Store, classifier mlmodel.Classifier, up *uploads.Storage) {
	claims, _ := auth.FromContext(c)

	category := c.PostForm("category")
	title := c.PostForm("title")
	description := c.PostForm("description")
	reportType := c.PostForm("type")
	location := c.PostForm("location")
	pincode := c.PostForm("pincode")

	if category == "" || title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category, title and description are required"})
		return
	}
	if !types.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + category})
		return
	}
	if reportType == "" {
		reportType = "Other"
	}

	now := time.Now().UTC()
	report := types.Report{
		ID:          types.NewReportID(),
		Category:    category,
		Title:       title,
		Type:        reportType,
		Description: description,
		Location:    location,
		Pincode:     pincode,
		CreatedAt:   now,
		Status:      types.StatusPending,
		ReporterID:  claims.UserID,
	}

	file, header, err := c.Request.FormFile("image")
	if err == nil {
		defer file.Close()

		blobName, saveErr := up.Save(header.Filename, file)
		if saveErr != nil {
			log.Printf("failed to store upload for report %s: %v", report.ID, saveErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}
		report.ImageRef = blobName

		// Classifier policy: contacted only when a photo is attached, one
		// multipart request, single attempt.
		blob, openErr := up.Open(blobName)
		if openErr != nil {
			log.Printf("failed to reopen upload %s: %v", blobName, openErr)
			report.Classification = mlmodel.Unavailable()
		} else {
			report.Classification = classifier.Classify(c.Request.Context(), mlmodel.Input{
				Title:       title,
				Description: description,
				Type:        reportType,
				Location:    location,
				Pincode:     pincode,
				Image:       blob,
				ImageName:   blobName,
			})
			blob.Close()
		}
		report.Authenticity = scoring.Score(title, report.Classification)
	}

	if err := st.Create(c.Request.Context(), report); err != nil {
		log.Printf("failed to save report %s: %v", report.ID, err)
		if report.ImageRef != "" {
			if rmErr := up.Remove(report.ImageRef); rmErr != nil {
				log.Printf("failed to remove upload %s after save failure: %v", report.ImageRef, rmErr)
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save report"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Report saved", "report": report})
}

// ListReports returns the community feed, optionally filtered by pincode.
func ListReports(c *gin.Context, st store.Store) {
	reports, err := st.List(c.Request.Context())
	if err != nil {
		log.Printf("failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read reports"})
		return
	}
	c.JSON(http.StatusOK, query.CommunityFeed(reports, c.Query("pincode")))
}

// AuthenticReports returns reports whose derived authenticity is true.
func AuthenticReports(c *gin.Context, st store.Store) {
	reports, err := st.List(c.Request.Context())
	if err != nil {
		log.Printf("failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read reports"})
		return
	}
	c.JSON(http.StatusOK, query.AuthenticOnly(reports))
}

// RealReports returns classifier-confirmed hazards ranked by confidence,
// with read-time severity buckets attached.
func RealReports(c *gin.Context, st store.Store) {
	reports, err := st.List(c.Request.Context())
	if err != nil {
		log.Printf("failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read reports"})
		return
	}
	minConfidence := query.ParseMinConfidence(c.Query("minConfidence"))
	c.JSON(http.StatusOK, query.VerifiedHazards(reports, minConfidence))
}

// GetReport returns a single report by id.
func GetReport(c *gin.Context, st store.Store) {
	report, err := st.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
			return
		}
		log.Printf("failed to get report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

type statusUpdateRequest struct {
	NewStatus      string `json:"newStatus"`
	AuthorityNotes string `json:"authorityNotes"`
}

// UpdateStatus drives the lifecycle state machine from the authority UI.
func UpdateStatus(c *gin.Context, manager *lifecycle.Manager) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no token provided"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := lifecycle.Actor{ID: claims.UserID, Role: claims.Role}
	updated, err := manager.Transition(c.Request.Context(), c.Param("id"), types.Status(req.NewStatus), req.AuthorityNotes, actor)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		case errors.Is(err, lifecycle.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "report is in a terminal state"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		default:
			log.Printf("failed to update status for report %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Healthz is the liveness probe.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
