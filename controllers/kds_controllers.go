package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueease/kds"
	"github.com/yeremiapane/queueease/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// KDSHandler -> websocket dashboard staff, hanya menerima event restorannya sendiri
func KDSHandler(c *gin.Context) {
	rid := restaurantID(c)
	if rid == 0 {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	kds.RegisterClient(ws, rid)
	defer kds.UnregisterClient(ws)
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": rid,
		"clients":       kds.ClientCount(),
	}).Info("dashboard connected")

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
