package http

import (
	"encoding/xml"
	"net/http"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// twimlResponse is the minimal reply envelope the gateway expects: one
// Message element inside a Response element.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func renderTwiML(text string) []byte {
	// Marshal of a plain string cannot fail.
	body, _ := xml.Marshal(twimlResponse{Message: text})
	return append([]byte(xmlHeader), body...)
}

func writeTwiML(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTwiML(text))
}
