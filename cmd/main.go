// cmd/main.go
package main

import (
	"merchant-api/app"
)

// @title           Merchant API
// @version         1.0
// @description     Merchant registration backend with e-mail verification, password reset and account deletion codes.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
