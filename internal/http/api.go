package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"minitweet/internal/backup"
	"minitweet/internal/domain"
	"minitweet/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tweets service.TweetService
	backup *backup.Service
}

func NewHandler(users service.UserService, tweets service.TweetService, backupSvc *backup.Service) *Handler {
	return &Handler{
		users:  users,
		tweets: tweets,
		backup: backupSvc,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.GET("/users", h.listUsers)
	router.GET("/users/:user_id", h.getUser)
	router.DELETE("/users/:user_id/delete", h.deleteUser)
	router.PUT("/users/:user_id/update", h.updateUser)

	router.GET("/", h.listTweets)
	router.POST("/tweet/post", h.postTweet)
	router.GET("/tweet/:tweet_id", h.getTweet)
	router.DELETE("/tweet/:tweet_id/delete", h.deleteTweet)
	router.PUT("/tweet/:tweet_id/update", h.updateTweet)

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	admin := router.Group("/admin")
	{
		admin.POST("/backup", h.runBackup)
		admin.GET("/backup/objects", h.listBackupObjects)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type signupRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
	Password  string `json:"password" binding:"required,min=8,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	UserID    string `json:"user_id" binding:"omitempty,uuid"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

type authorPayload struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=50"`
	LastName  string `json:"last_name" binding:"required,min=1,max=50"`
	Birthday  string `json:"birthday" binding:"omitempty,datetime=2006-01-02"`
}

type postTweetRequest struct {
	TweetID string        `json:"tweet_id" binding:"required,uuid"`
	Content string        `json:"content" binding:"required,min=1,max=256"`
	By      authorPayload `json:"by" binding:"required"`
}

type updateTweetRequest struct {
	Content string `json:"content" binding:"required,min=1,max=256"`
}

type UserResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Birthday  *string `json:"birthday,omitempty"`
}

type TweetResponse struct {
	TweetID   string       `json:"tweet_id"`
	Content   string       `json:"content"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt *string      `json:"updated_at,omitempty"`
	By        UserResponse `json:"by"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	in := service.RegisterInput{
		UserID:    uuid.MustParse(req.UserID),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	if req.Birthday != "" {
		birthday, err := domain.ParseDate(req.Birthday)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid birthday"})
			return
		}
		in.Birthday = &birthday
	}

	user, err := h.users.Register(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(*user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	// the id in the path wins; a mismatching body id is rejected
	if req.UserID != "" && req.UserID != id.String() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "user id mismatch"})
		return
	}

	in := service.UserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Birthday != "" {
		birthday, err := domain.ParseDate(req.Birthday)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid birthday"})
			return
		}
		in.Birthday = &birthday
	}

	user, err := h.users.Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) listTweets(c *gin.Context) {
	tweets, err := h.tweets.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]TweetResponse, len(tweets))
	for i := range tweets {
		resp[i] = tweetToResponse(tweets[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) postTweet(c *gin.Context) {
	var req postTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	author := domain.User{
		UserID:    uuid.MustParse(req.By.UserID),
		Email:     req.By.Email,
		FirstName: req.By.FirstName,
		LastName:  req.By.LastName,
	}
	if req.By.Birthday != "" {
		birthday, err := domain.ParseDate(req.By.Birthday)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid author birthday"})
			return
		}
		author.Birthday = &birthday
	}

	tweet, err := h.tweets.Post(c.Request.Context(), service.PostTweetInput{
		TweetID: uuid.MustParse(req.TweetID),
		Content: req.Content,
		By:      author,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tweetToResponse(*tweet))
}

func (h *Handler) getTweet(c *gin.Context) {
	id, ok := parseID(c, "tweet_id")
	if !ok {
		return
	}

	tweet, err := h.tweets.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tweetToResponse(*tweet))
}

func (h *Handler) deleteTweet(c *gin.Context) {
	id, ok := parseID(c, "tweet_id")
	if !ok {
		return
	}

	if err := h.tweets.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": id.String()})
}

func (h *Handler) updateTweet(c *gin.Context) {
	id, ok := parseID(c, "tweet_id")
	if !ok {
		return
	}

	var req updateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	tweet, err := h.tweets.Update(c.Request.Context(), id, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tweetToResponse(*tweet))
}

func (h *Handler) runBackup(c *gin.Context) {
	if h.backup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup service not configured"})
		return
	}

	location, err := h.backup.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location})
}

func (h *Handler) listBackupObjects(c *gin.Context) {
	if h.backup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backup service not configured"})
		return
	}

	objects, err := h.backup.ListObjects(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]gin.H, len(objects))
	for i, obj := range objects {
		entry := gin.H{"key": obj.Key, "size": obj.Size}
		if obj.LastModified != nil && !obj.LastModified.IsZero() {
			entry["last_modified"] = obj.LastModified.Format(time.RFC3339)
		}
		resp[i] = entry
	}
	c.JSON(http.StatusOK, resp)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTweetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrTweetExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func userToResponse(user domain.User) UserResponse {
	resp := UserResponse{
		UserID:    user.UserID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if user.Birthday != nil {
		v := user.Birthday.String()
		resp.Birthday = &v
	}
	return resp
}

func tweetToResponse(tweet domain.Tweet) TweetResponse {
	resp := TweetResponse{
		TweetID:   tweet.TweetID.String(),
		Content:   tweet.Content,
		CreatedAt: tweet.CreatedAt.Format(time.RFC3339),
		By:        userToResponse(tweet.By),
	}
	if tweet.UpdatedAt != nil {
		v := tweet.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &v
	}
	return resp
}
