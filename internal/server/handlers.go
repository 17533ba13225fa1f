package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/divymav/portfolio/internal/carousel"
	"github.com/divymav/portfolio/internal/page"
)

// index renders the whole page. Every load gets a fresh view ID that the
// browser echoes back in reveal beacons. ?reveal=all renders every element
// in its final state.
func (s *Server) index(c *gin.Context) {
	view := page.Build(s.content, uuid.NewString())
	if c.Query("reveal") == "all" {
		view.RevealAll()
	}
	c.HTML(http.StatusOK, "index.html", view)
}

func (s *Server) getContent(c *gin.Context) {
	c.JSON(http.StatusOK, s.content)
}

// getCarousel returns the slick settings, resolved for ?width= when given.
func (s *Server) getCarousel(c *gin.Context) {
	settings := carousel.Default()
	if c.Query("width") == "" {
		c.JSON(http.StatusOK, settings)
		return
	}
	width, err := queryWidth(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, settings.At(width))
}

type windowResponse struct {
	Width    int   `json:"width"`
	Shown    int   `json:"shown"`
	Current  int   `json:"current"`
	Visible  []int `json:"visible"`
	Advanced int   `json:"advanced"`
	Dots     int   `json:"dots"`
}

// getCarouselWindow reports which project cards are on screen after the
// carousel has autoplayed for ?elapsed= milliseconds at ?width=, optionally
// with the pointer resting on it (?hovered=true) the whole time.
func (s *Server) getCarouselWindow(c *gin.Context) {
	width, err := queryWidth(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	elapsed := 0
	if c.Query("elapsed") != "" {
		if elapsed, err = queryInt(c, "elapsed"); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if int64(elapsed) > maxElapsedMillis {
			respondError(c, http.StatusBadRequest, "elapsed is too large")
			return
		}
	}
	hovered := false
	if v := c.Query("hovered"); v != "" {
		if hovered, err = strconv.ParseBool(v); err != nil {
			respondError(c, http.StatusBadRequest, "hovered must be a boolean")
			return
		}
	}

	car, err := carousel.New(len(s.content.Projects), carousel.Default().At(width))
	if errors.Is(err, carousel.ErrEmpty) {
		respondError(c, http.StatusNotFound, "no projects")
		return
	}
	if err != nil {
		s.log.Error("building carousel", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "carousel unavailable")
		return
	}

	car.Hover(hovered)
	car.Tick(time.Duration(elapsed) * time.Millisecond)
	c.JSON(http.StatusOK, windowResponse{
		Width:    width,
		Shown:    car.Shown(),
		Current:  car.Current(),
		Visible:  car.Visible(),
		Advanced: car.Advanced(),
		Dots:     car.Dots(),
	})
}

type revealRequest struct {
	View    string `json:"view" binding:"required"`
	Section string `json:"section" binding:"required"`
}

// postReveal receives the browser's one-shot reveal beacon. Storage failures
// are logged and swallowed.
func (s *Server) postReveal(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "view and section are required")
		return
	}
	if _, err := uuid.Parse(req.View); err != nil {
		respondError(c, http.StatusBadRequest, "view must be a UUID")
		return
	}
	section, ok := page.ParseSection(req.Section)
	if !ok {
		respondError(c, http.StatusBadRequest, "unknown section")
		return
	}

	if s.store != nil {
		first, err := s.store.RecordReveal(c.Request.Context(), req.View, string(section))
		if err != nil {
			s.log.Warn("recording reveal failed", zap.Error(err))
		} else {
			s.log.Debug("reveal", zap.String("section", string(section)), zap.Bool("first", first))
		}
	}
	c.Status(http.StatusNoContent)
}

// maxElapsedMillis is the longest ?elapsed= that fits a time.Duration.
const maxElapsedMillis = math.MaxInt64 / int64(time.Millisecond)

// queryWidth reads ?width=, a viewport width of at least one pixel.
func queryWidth(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Query("width"))
	if err != nil || n < 1 {
		return 0, errors.New("width must be a positive integer")
	}
	return n, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0, errors.New(key + " must be a non-negative integer")
	}
	return n, nil
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
