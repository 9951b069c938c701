// cmd/webblast/main.go
package main

import (
	"webblast/internal/app"
	"webblast/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
