package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
)

type QueueController struct {
	Engine   *services.QueueEngine
	Location *time.Location
}

func NewQueueController(engine *services.QueueEngine) *QueueController {
	loc := engine.Location
	if loc == nil {
		loc = time.UTC
	}
	return &QueueController{Engine: engine, Location: loc}
}

// CreateQueue -> customer masuk waitlist atau booking slot
func (qc *QueueController) CreateQueue(c *gin.Context) {
	var req services.CreateQueueInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	req.QueueType = strings.ToUpper(req.QueueType)

	queue, err := qc.Engine.CreateQueue(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Queue created successfully", queue)
}

// GetQueues -> availability per timeslot untuk satu hari
func (qc *QueueController) GetQueues(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	day, err := queryDay(c, qc.Location)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	queueType := strings.ToUpper(c.Query("queueType"))
	if queueType != "" && !models.IsValidQueueStatus(queueType) {
		utils.RespondError(c, utils.BadRequest("Invalid queueType %q", queueType))
		return
	}

	slots, err := qc.Engine.SlotAvailability(c.Request.Context(), rid, day, queueType, queryBool(c, "isForCustomerBooking"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queues fetched successfully", slots)
}

// GetHomeQueues -> daftar antrian hari ini untuk layar depan
func (qc *QueueController) GetHomeQueues(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	qc.listQueues(c, rid)
}

// GetHomeQueuesForAdmin -> sama, untuk restoran admin yang login
func (qc *QueueController) GetHomeQueuesForAdmin(c *gin.Context) {
	qc.listQueues(c, restaurantID(c))
}

func (qc *QueueController) listQueues(c *gin.Context, rid uint) {
	day, err := queryDay(c, qc.Location)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	queues, err := qc.Engine.ListQueues(c.Request.Context(), services.ListQueuesInput{
		RestaurantID: rid,
		Day:          day,
		QueueType:    strings.ToUpper(c.Query("queueType")),
		IsForToday:   queryBool(c, "isForToday"),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queues fetched successfully", queues)
}

// GetSlots -> grid slot hari itu dan sisa meja per slot
func (qc *QueueController) GetSlots(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	day, err := queryDay(c, qc.Location)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	partySize := 1
	if raw := c.Query("partySize"); raw != "" {
		partySize, err = strconv.Atoi(raw)
		if err != nil || partySize <= 0 {
			utils.RespondError(c, utils.BadRequest("partySize must be greater than 0"))
			return
		}
	}

	slots, err := qc.Engine.DaySlots(c.Request.Context(), rid, day, partySize)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Slots fetched successfully", slots)
}

// GetWaitlist -> jumlah waitlist dan estimasi tunggu untuk calon pengantri
func (qc *QueueController) GetWaitlist(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	day, err := queryDay(c, qc.Location)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	summary, err := qc.Engine.WaitlistSummary(c.Request.Context(), rid, day)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waitlist fetched successfully", summary)
}

// GetQueueDetails -> detail antrian berdasarkan queueNo, dengan estimasi bila WAITLIST
func (qc *QueueController) GetQueueDetails(c *gin.Context) {
	queue, err := qc.Engine.GetQueueDetails(c.Request.Context(), c.Param("queueNo"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue fetched successfully", queue)
}

// UpdateQueueStatus -> staff memindahkan antrian (SERVING, COMPLETED, ganti meja)
func (qc *QueueController) UpdateQueueStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req services.UpdateQueueStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if req.TableID == nil && req.Status == nil && req.ProgressStatus == nil {
		utils.RespondError(c, utils.BadRequest("Nothing to update"))
		return
	}

	if _, err := qc.ownedQueue(c, id); err != nil {
		utils.RespondError(c, err)
		return
	}

	queue, err := qc.Engine.UpdateQueueStatus(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue updated successfully", queue)
}

// GetQueueByID -> tampilan staff, tanpa penolakan status SERVING
func (qc *QueueController) GetQueueByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	queue, err := qc.ownedQueue(c, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queue fetched successfully", queue)
}

// GetCustomerQueues -> riwayat antrian customer yang login
func (qc *QueueController) GetCustomerQueues(c *gin.Context) {
	queues, err := qc.Engine.ListCustomerQueues(c.Request.Context(), customerPhone(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Queues fetched successfully", queues)
}

// ownedQueue memastikan antrian milik restoran admin yang login
func (qc *QueueController) ownedQueue(c *gin.Context, id uint) (*models.Queue, error) {
	queue, err := qc.Engine.GetQueueByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if queue.RestaurantID != restaurantID(c) {
		return nil, utils.NotFound("Queue not found")
	}
	return queue, nil
}
