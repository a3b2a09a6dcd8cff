package docs

import (
	_ "embed"
	"net"
	"net/http"
	"strings"

	"github.com/swaggo/swag"
)

//go:embed swagger.json
var swaggerTemplate string

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Signal Directory API",
	Description:      "Session directory for WebRTC offer exchange",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  swaggerTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// SetHost fills the document's host. public is the externally visible host
// and wins when set; otherwise the listen address is used.
func SetHost(public, listenHost, port string) {
	SwaggerInfo.Host = advertisedHost(public, listenHost, port)
}

func advertisedHost(public, listenHost, port string) string {
	host := listenHost
	if public != "" {
		if strings.Contains(public, ":") {
			return public
		}
		host = public
	}
	if port == "" || port == "80" || port == "443" {
		return host
	}
	return net.JoinHostPort(host, port)
}

// JSONHandler serves the rendered document.
func JSONHandler(w http.ResponseWriter, _ *http.Request) {
	doc := SwaggerInfo.ReadDoc()
	if doc == "" {
		http.Error(w, "swagger spec not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}
