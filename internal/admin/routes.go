package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spravuz/spravbot/internal/models"
	"github.com/spravuz/spravbot/internal/store"
)

// operatorHeader carries the operator identity on mutating calls.
// Authenticating operators is out of scope; the console trusts its caller.
const operatorHeader = "X-Operator"

// registerRoutes sets up the operator console routes on the Gin router.
func registerRoutes(router *gin.Engine, st *store.Store, workflow *Workflow) {
	api := router.Group("/api")
	api.GET("/requests", handleListRequests(st))
	api.GET("/requests/:id", handleGetRequest(st))
	api.POST("/requests/:id/status", handleSetStatus(workflow))
	api.POST("/requests/:id/reply", handleReply(workflow))
	api.GET("/users", handleListUsers(st))
	api.GET("/stats", handleStats(st))
}

func handleListRequests(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && !models.KnownStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		requests, err := st.ListRequests(status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"requests": requests})
	}
}

func handleGetRequest(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		detail, err := st.GetRequest(id)
		if err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func handleSetStatus(workflow *Workflow) gin.HandlerFunc {
	type statusBody struct {
		Status string `json:"status" binding:"required"`
	}
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		operator, ok := operatorIdentity(c)
		if !ok {
			return
		}
		var body statusBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		if !models.KnownStatus(body.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		if err := workflow.ChangeStatus(id, body.Status, operator); err != nil {
			writeStoreError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func handleReply(workflow *Workflow) gin.HandlerFunc {
	type replyBody struct {
		Message string `json:"message" binding:"required"`
	}
	return func(c *gin.Context) {
		id, ok := requestID(c)
		if !ok {
			return
		}
		operator, ok := operatorIdentity(c)
		if !ok {
			return
		}
		var body replyBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
			return
		}
		reply, err := workflow.Reply(c.Request.Context(), id, body.Message, operator)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
				return
			}
			// Delivery or persistence failure: the reply is not recorded.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
	}
}

func handleListUsers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := st.ListUsers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}

func handleStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := st.Stats()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// requestID parses the :id path parameter, writing a 400 on failure.
func requestID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return 0, false
	}
	return uint(id), true
}

// operatorIdentity reads the operator header, writing a 400 if absent.
func operatorIdentity(c *gin.Context) (string, bool) {
	operator := c.GetHeader(operatorHeader)
	if operator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Operator header is required"})
		return "", false
	}
	return operator, true
}

// writeStoreError maps store errors to HTTP responses.
func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
