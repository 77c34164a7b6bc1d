package handlers

import (
	"net/url"
	"strconv"
	"time"

	config "github.com/examsoft/exam_portal/configs"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v2"
)

const questionImageFolder = "exam_portal_questions"

// GenerateUploadSignature creates a signed upload ticket so the admin
// dashboard can push question images straight to Cloudinary.
func GenerateUploadSignature(c *fiber.Ctx) error {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to initialize Cloudinary")
	}

	parsedURL, err := url.Parse(cloudinaryURL)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to parse Cloudinary URL")
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: questionImageFolder,
	})
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to prepare signature params")
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, CodeInternal, "Failed to sign upload params")
	}

	return ok(c, fiber.Map{
		"signature": signature,
		"timestamp": timestamp,
		"api_key":   cld.Config.Cloud.APIKey,
		"folder":    questionImageFolder,
	})
}
