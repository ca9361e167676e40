package email

var GlobalEmailService *EmailService

func InitEmailService(apiKey, from, siteURL string) error {
	service, err := NewEmailService(apiKey, from, siteURL)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
