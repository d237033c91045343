package handler

import (
	"net/http"

	"github.com/orhanozan33/epicebuhara-sub000/internal/apierror"
	"github.com/orhanozan33/epicebuhara-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// JobsHandler exposes the invoice and email queues to operators.
type JobsHandler struct {
	rdb *redis.Client
}

func NewJobsHandler(rdb *redis.Client) *JobsHandler {
	return &JobsHandler{rdb: rdb}
}

type dlqQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

// queueParam maps the short :queue name ("invoice", "email") to its Redis key.
func queueParam(c *gin.Context) (string, bool) {
	q := "jobs:" + c.Param("queue")
	if !worker.KnownQueue(q) {
		c.JSON(http.StatusNotFound, apierror.New("unknown queue"))
		return "", false
	}
	return q, true
}

// Stats godoc
// @Summary      Queue depths
// @Tags         jobs
// @Produce      json
// @Success      200 {array} worker.QueueStats
// @Router       /v1/jobs [get]
func (h *JobsHandler) Stats(c *gin.Context) {
	stats, err := worker.Stats(c.Request.Context(), h.rdb)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DeadLetters godoc
// @Summary      List parked jobs of a queue
// @Tags         jobs
// @Produce      json
// @Param        queue path  string true  "invoice | email"
// @Param        limit query int    false "Max entries (default 50)"
// @Success      200 {array} worker.DLQEntry
// @Router       /v1/jobs/{queue}/dead [get]
func (h *JobsHandler) DeadLetters(c *gin.Context) {
	queue, ok := queueParam(c)
	if !ok {
		return
	}
	var q dlqQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	entries, err := worker.PeekDLQ(c.Request.Context(), h.rdb, queue, int64(q.Limit))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ReplayDeadLetters godoc
// @Summary      Move parked jobs back onto their queue
// @Tags         jobs
// @Produce      json
// @Param        queue path  string true  "invoice | email"
// @Param        limit query int    false "Max jobs to replay (default 50)"
// @Success      200 {object} map[string]int
// @Router       /v1/jobs/{queue}/dead/replay [post]
func (h *JobsHandler) ReplayDeadLetters(c *gin.Context) {
	queue, ok := queueParam(c)
	if !ok {
		return
	}
	var q dlqQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	moved, err := worker.ReplayDLQ(c.Request.Context(), h.rdb, queue, q.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": moved})
}
