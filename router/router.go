package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/controllers"
	"github.com/yeremiapane/queueease/middlewares"
	"github.com/yeremiapane/queueease/services"
	"gorm.io/gorm"
)

// Deps -> semua dependency yang dibutuhkan router, dirakit di main
type Deps struct {
	DB       *gorm.DB
	Engine   *services.QueueEngine
	Orders   *services.OrderService
	Monitor  *services.FloorMonitor
	Uploader controllers.FileUploader

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	Production     bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(d.Production))
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	if d.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst).RateLimit())
	}

	// Inisialisasi controller
	queueCtrl := controllers.NewQueueController(d.Engine)
	restaurantCtrl := controllers.NewRestaurantController(d.DB)
	tableCtrl := controllers.NewTableController(d.DB)
	mealCtrl := controllers.NewMealController(d.DB)
	staffCtrl := controllers.NewStaffController(d.DB)
	customerCtrl := controllers.NewCustomerController(d.DB)
	adminCtrl := controllers.NewAdminController(d.DB, d.Monitor)
	orderCtrl := controllers.NewOrderController(d.Orders)
	uploadCtrl := controllers.NewUploadController(d.Uploader)

	requireRestaurant := middlewares.RequireRestaurant(d.DB)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	authLimiter := middlewares.NewStrictRateLimiter().RateLimit()

	queues := r.Group("/queues")
	{
		queues.POST("", queueCtrl.CreateQueue)
		queues.GET("", queueCtrl.GetQueues)
		queues.GET("/home", queueCtrl.GetHomeQueues)
		queues.GET("/slots", queueCtrl.GetSlots)
		queues.GET("/waitlist", queueCtrl.GetWaitlist)
		queues.GET("/:queueNo", queueCtrl.GetQueueDetails)
		queues.PUT("/update-status/:id", middlewares.AdminAuth(), requireRestaurant, queueCtrl.UpdateQueueStatus)
	}

	r.GET("/restaurants", restaurantCtrl.GetRestaurants)
	r.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	r.GET("/restaurants/details/:slug", restaurantCtrl.GetRestaurantDetails)
	r.GET("/tables/largest", tableCtrl.GetLargestTable)
	r.GET("/meals", mealCtrl.GetMeals)

	admins := r.Group("/admins", authLimiter)
	{
		admins.POST("/register", adminCtrl.Register)
		admins.POST("/login", adminCtrl.Login)
	}

	customers := r.Group("/customers")
	{
		customers.POST("", customerCtrl.CreateCustomer)
		customers.POST("/register", authLimiter, customerCtrl.Register)
		customers.POST("/register-existing", authLimiter, customerCtrl.RegisterExisting)
		customers.POST("/login", authLimiter, customerCtrl.Login)
	}

	// Dashboard websocket (token admin lewat query)
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), requireRestaurant, controllers.KDSHandler)

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	me := r.Group("/customers", middlewares.CustomerAuth())
	{
		me.GET("/me", customerCtrl.Me)
		me.PUT("/change-password", customerCtrl.ChangePassword)
		me.POST("/logout", customerCtrl.Logout)
		me.GET("/queues", queueCtrl.GetCustomerQueues)
		me.POST("/orders", orderCtrl.PlaceOrder)
		me.GET("/orders", orderCtrl.GetMyOrders)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin", middlewares.AdminAuth())
	{
		admin.GET("/me", adminCtrl.Me)
		admin.PUT("/me", adminCtrl.UpdateMe)
		admin.POST("/logout", adminCtrl.Logout)
		admin.GET("/customers", customerCtrl.GetAllCustomers)
		admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		admin.GET("/restaurant", restaurantCtrl.GetMyRestaurant)
	}

	owner := admin.Group("", requireRestaurant)
	{
		owner.PUT("/restaurant", restaurantCtrl.UpdateRestaurant)
		owner.PUT("/restaurant/days", restaurantCtrl.UpdateOpenDays)
		owner.PUT("/restaurant/hours", restaurantCtrl.UpdateOpenHours)
		owner.DELETE("/restaurant", restaurantCtrl.DeleteRestaurant)
		owner.GET("/dashboard", adminCtrl.GetDashboardStats)

		owner.GET("/queues", queueCtrl.GetHomeQueuesForAdmin)
		owner.GET("/queues/:id", queueCtrl.GetQueueByID)

		owner.GET("/tables", tableCtrl.GetTables)
		owner.POST("/tables", tableCtrl.CreateTable)
		owner.PUT("/tables/:id", tableCtrl.UpdateTable)
		owner.DELETE("/tables/:id", tableCtrl.DeleteTable)

		owner.GET("/meals", mealCtrl.GetRestaurantMeals)
		owner.POST("/meals", mealCtrl.CreateMeal)
		owner.PUT("/meals/:id", mealCtrl.UpdateMeal)
		owner.DELETE("/meals/:id", mealCtrl.DeleteMeal)

		owner.GET("/staff", staffCtrl.GetStaff)
		owner.POST("/staff", staffCtrl.CreateStaff)
		owner.PUT("/staff/:id", staffCtrl.UpdateStaff)
		owner.DELETE("/staff/:id", staffCtrl.DeleteStaff)

		owner.GET("/orders", orderCtrl.GetRestaurantOrders)
		owner.PUT("/orders/:id/status", orderCtrl.UpdateOrderStatus)

		owner.POST("/upload", uploadCtrl.Upload)
	}

	return r
}
