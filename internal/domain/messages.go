package domain

import "fmt"

// User-facing messages. The widget is French only.
const (
	MessageNoResults = "Aucune commune ou localité ne correspond à votre recherche."

	messageOfficeNotFound = "Aucun guichet social régional n'a été trouvé pour les coordonnées %s."
	messageTransport      = "Le service est momentanément indisponible. Veuillez réessayer plus tard ou contacter le helpdesk au %s."
)

// OfficeNotFoundMessage embeds the queried coordinates.
func OfficeNotFoundMessage(coordinates string) string {
	return fmt.Sprintf(messageOfficeNotFound, coordinates)
}

// TransportMessage embeds the support desk number.
func TransportMessage(supportPhone string) string {
	return fmt.Sprintf(messageTransport, supportPhone)
}
