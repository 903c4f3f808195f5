package controller

import (
	"fmt"
	"log"

	"freemail/models"
	"freemail/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ClientController struct {
	DB      *gorm.DB
	Logger  *log.Logger
	BaseURL string
}

func NewClientController(db *gorm.DB, logger *log.Logger, baseURL string) *ClientController {
	return &ClientController{DB: db, Logger: logger, BaseURL: baseURL}
}

// RegisterClient registers a website for tracking and issues its client id
// and API key
func (cl *ClientController) RegisterClient(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name   string `json:"name" validate:"required,max=200"`
		Email  string `json:"email" validate:"omitempty,email"`
		Domain string `json:"domain" validate:"required,max=255"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	client := models.Client{
		UserID:   user.ID,
		ClientID: utils.GenerateClientID(),
		APIKey:   utils.GenerateAPIKey(),
		Name:     input.Name,
		Email:    input.Email,
		Domain:   input.Domain,
		Status:   models.ClientStatusActive,
	}

	if err := cl.DB.Create(&client).Error; err != nil {
		cl.Logger.Printf("Failed to register client for domain %s: %v", input.Domain, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register client", err)
	}

	utils.LogEvent("client_registered", map[string]interface{}{
		"client_id": client.ClientID,
		"domain":    client.Domain,
	})

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(client))
}

// GetClients lists all registered clients for the user
func (cl *ClientController) GetClients(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var clients []models.Client
	if err := cl.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&clients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch clients", err)
	}

	return c.JSON(utils.SuccessResponse(clients))
}

// GetClient returns one registered client
func (cl *ClientController) GetClient(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var client models.Client
	if err := cl.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&client).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Client not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch client", err)
	}

	return c.JSON(utils.SuccessResponse(client))
}

// UpdateClientStatus activates, deactivates or suspends a client
func (cl *ClientController) UpdateClientStatus(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Status string `json:"status" validate:"required,oneof=active inactive suspended"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var client models.Client
	if err := cl.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&client).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Client not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch client", err)
	}

	client.Status = input.Status
	if err := cl.DB.Save(&client).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update client", err)
	}

	return c.JSON(utils.SuccessResponse(client))
}

// GetEmbedCode returns the async loader snippet for a registered client
func (cl *ClientController) GetEmbedCode(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var client models.Client
	if err := cl.DB.Where("id = ? AND user_id = ?", c.Params("id"), user.ID).First(&client).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Client not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch client", err)
	}

	snippet := fmt.Sprintf(`<!-- Newsletter tracking snippet -->
<script>
  (function(w,d,s,e,c){
    w.NewsletterTracker=w.NewsletterTracker||{clientId:c,endpoint:e,queue:[]};
    w.nlt=w.nlt||function(){w.NewsletterTracker.queue.push(arguments)};
    var j=d.createElement(s);j.async=true;j.src=e+'/tracker.js';
    var f=d.getElementsByTagName(s)[0];f.parentNode.insertBefore(j,f);
  })(window,document,'script','%s','%s');
</script>`, cl.BaseURL, client.ClientID)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"client_id":  client.ClientID,
		"embed_code": snippet,
	}))
}
