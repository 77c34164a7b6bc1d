package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/examsoft/exam_portal/configs"
	"github.com/examsoft/exam_portal/database"
	"github.com/examsoft/exam_portal/models"
	"github.com/examsoft/exam_portal/utils"
	"github.com/google/uuid"
)

// IssueCertificate renders and stores a pass certificate. One certificate
// per (student, exam); retakes never re-issue.
func IssueCertificate(user models.User, exam models.Exam, score, percentage int) {
	if config.Config("CLOUDINARY_URL") == "" {
		log.Println("⚠️ CLOUDINARY_URL not set, skipping certificate generation.")
		return
	}

	var existing models.Certificate
	if err := database.DB.Where("user_id = ? AND exam_id = ?", user.ID, exam.ID).First(&existing).Error; err == nil {
		return
	}

	serial, err := utils.GenerateCertificateSerial(database.DB)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate serial: %v", err)
		return
	}

	htmlData, err := generateCertificateHTML(user.FullName, exam.Title, serial, score, percentage)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate PDF: %v", err)
		return
	}

	uploadURL, err := uploadToCloudinary(pdfBytes, user.ID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload certificate to Cloudinary: %v", err)
		return
	}

	certificate := models.Certificate{
		UserID:         user.ID,
		ExamID:         exam.ID,
		ExamTitle:      exam.Title,
		SerialCode:     serial,
		Score:          score,
		Percentage:     percentage,
		IssuedAt:       time.Now(),
		CertificateURL: uploadURL,
	}

	if err := database.DB.Create(&certificate).Error; err != nil {
		log.Printf("🔥 Failed to create certificate record for user %s: %v", user.ID, err)
	} else {
		log.Printf("✅ Issued certificate %s for '%s' to user %s.", serial, exam.Title, user.ID)
	}
}

func generateCertificateHTML(studentName, examTitle, serial string, score, percentage int) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName string
		ExamTitle   string
		SerialCode  string
		Score       int
		Percentage  int
		IssuedDate  string
	}{
		StudentName: studentName,
		ExamTitle:   examTitle,
		SerialCode:  serial,
		Score:       score,
		Percentage:  percentage,
		IssuedDate:  time.Now().Format("January 2, 2006"),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadToCloudinary(fileBytes []byte, userID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s_%s", userID, uuid.New().String()),
		Folder:       "exam_portal_certificates",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
