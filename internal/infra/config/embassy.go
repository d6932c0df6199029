// internal/infra/config/embassy.go
package config

import "sort"

// Embassy identifies a consular post on the appointment site.
type Embassy struct {
	// Code is the locale segment of site URLs, e.g. "en-am".
	Code       string
	FacilityID int
	// ContinueMarker is the text of the link shown after a successful sign-in.
	ContinueMarker string
}

// Embassies maps the your_embassy config value to the site identifiers of the post.
var Embassies = map[string]Embassy{
	"en-am-yer": {Code: "en-am", FacilityID: 122, ContinueMarker: "Continue"},
	"es-co-bog": {Code: "es-co", FacilityID: 25, ContinueMarker: "Continuar"},
	"en-ca-cal": {Code: "en-ca", FacilityID: 89, ContinueMarker: "Continue"},
	"en-ca-hal": {Code: "en-ca", FacilityID: 90, ContinueMarker: "Continue"},
	"en-ca-mon": {Code: "en-ca", FacilityID: 91, ContinueMarker: "Continue"},
	"en-ca-ott": {Code: "en-ca", FacilityID: 92, ContinueMarker: "Continue"},
	"en-ca-que": {Code: "en-ca", FacilityID: 93, ContinueMarker: "Continue"},
	"en-ca-tor": {Code: "en-ca", FacilityID: 94, ContinueMarker: "Continue"},
	"en-ca-van": {Code: "en-ca", FacilityID: 95, ContinueMarker: "Continue"},
	"en-il-tlv": {Code: "en-il", FacilityID: 97, ContinueMarker: "Continue"},
	"en-gb-lon": {Code: "en-gb", FacilityID: 17, ContinueMarker: "Continue"},
	"en-tr-ank": {Code: "en-tr", FacilityID: 124, ContinueMarker: "Continue"},
	"en-tr-ist": {Code: "en-tr", FacilityID: 125, ContinueMarker: "Continue"},
	"es-mx-mex": {Code: "es-mx", FacilityID: 65, ContinueMarker: "Continuar"},
}

// EmbassyKeys returns the keys of the built-in table in sorted order.
func EmbassyKeys() []string {
	keys := make([]string, 0, len(Embassies))
	for k := range Embassies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
