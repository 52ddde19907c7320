package api

import (
	"bytes"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pillartwo/domain/core"
	"pillartwo/domain/dashboard"
	"pillartwo/domain/entity"
	"pillartwo/domain/rules"
	"pillartwo/domain/validation"
	"pillartwo/internal/errors"
	"pillartwo/internal/profiling"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"entities": len(s.Store.All()),
		"rulebook": s.Rulebook.Hash().Short(),
		"source":   s.Rulebook.Source(),
	})
}

// handleEntities lists entities, optionally by region and ETR band.
func (s *Server) handleEntities(c *gin.Context) {
	region := c.DefaultQuery("region", rules.RegionAll)
	if _, ok := s.Rulebook.Rules.Regions[region]; !ok && region != rules.RegionAll {
		respondError(c, errors.InvalidInput("unknown region "+strconv.Quote(region)))
		return
	}
	band, err := dashboard.ParseETRBand(c.Query("etr"))
	if err != nil {
		respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	minimum := s.Rulebook.Rules.MinimumRate
	entities := make([]entity.Entity, 0)
	for _, e := range s.Store.ByRegion(region) {
		below := e.JurisdictionalETR < minimum
		if (band == dashboard.BandBelow && !below) || (band == dashboard.BandAbove && below) {
			continue
		}
		entities = append(entities, e)
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities, "count": len(entities)})
}

func (s *Server) handleEntity(c *gin.Context) {
	id, ok := entityID(c, c.Param("id"))
	if !ok {
		return
	}
	e, found := s.Store.ByID(id)
	if !found {
		respondError(c, errors.NotFound("entity "+strconv.Itoa(id)))
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleEntityDetail(c *gin.Context) {
	id, ok := entityID(c, c.Param("id"))
	if !ok {
		return
	}
	detail, err := s.Dashboard.Detail(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) handleJurisdictions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jurisdictions": s.Store.JurisdictionAggregates()})
}

func (s *Server) handleSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.Store.SummaryStatistics())
}

func (s *Server) handleAnomalies(c *gin.Context) {
	anomalous := s.Store.Anomalous()
	c.JSON(http.StatusOK, gin.H{"entities": anomalous, "count": len(anomalous)})
}

// queryFilters reads year, region and etr from the query string.
func queryFilters(c *gin.Context) dashboard.Filters {
	return dashboard.Filters{
		Year:   c.Query("year"),
		Region: c.DefaultQuery("region", rules.RegionAll),
		ETR:    dashboard.ETRBand(c.DefaultQuery("etr", string(dashboard.BandAll))),
	}
}

// handleDashboard returns the view for the request's own filters.
func (s *Server) handleDashboard(c *gin.Context) {
	view, err := s.Dashboard.ViewFor(c.Request.Context(), queryFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleETRProfile(c *gin.Context) {
	profile, err := s.Dashboard.ETRProfileFor(queryFilters(c))
	if stderrors.Is(err, profiling.ErrNoData) {
		respondError(c, errors.WithCode(errors.CodeNotFound, err))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleValidate validates one entity, or the whole roster with all=true.
// Unknown calculation types produce an invalid result, not an HTTP error.
func (s *Server) handleValidate(c *gin.Context) {
	calcType, _ := validation.ParseCalculationType(c.Param("type"))

	if all, _ := strconv.ParseBool(c.Query("all")); all {
		report, err := s.Validation.ValidateRoster(c.Request.Context(), calcType)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	id := 0
	if raw := c.Query("entity_id"); raw != "" {
		var ok bool
		if id, ok = entityID(c, raw); !ok {
			return
		}
	}
	result, err := s.Validation.ValidateEntity(calcType, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleReference(c *gin.Context) {
	ref, known := s.Rulebook.Reference(c.Param("type"))
	c.JSON(http.StatusOK, gin.H{
		"known":     known,
		"reference": ref,
		"html":      ref.HTML(),
	})
}

// handleExport renders the view for the query filters as a workbook. The
// workbook is buffered so a failed export still gets an error status.
func (s *Server) handleExport(c *gin.Context) {
	view, err := s.Dashboard.ViewFor(c.Request.Context(), queryFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := s.Exporter.Export(&buf, view); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="pillar-two-report.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// entityID parses a positive entity id or writes a 400.
func entityID(c *gin.Context, raw string) (int, bool) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respondError(c, errors.InvalidInput("entity id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// respondError gives domain errors an AppError code and maps the code onto
// an HTTP status. Anything unrecognized is an internal error.
func respondError(c *gin.Context, err error) {
	if !errors.IsAppError(err) {
		switch {
		case core.IsNotFoundError(err):
			err = errors.WithCode(errors.CodeNotFound, err)
		case stderrors.Is(err, core.ErrUnknownRegion), stderrors.Is(err, core.ErrInvalidBand):
			err = errors.WithCode(errors.CodeInvalidInput, err)
		default:
			err = errors.InternalError(err.Error())
		}
	}

	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
