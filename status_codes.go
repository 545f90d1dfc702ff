// status_codes.go
// ---------------
// The status taxonomy maps HTTP status codes returned by the PDBe REST API to a short
// label and a long description. Codes the API does not document fall back to the
// nearest documented code of their bracket: anything below 500 reads like a 400 and
// anything else like a 500.
package pdbebridge

import "net/http"

// StatusDescription is the label/description pair of one HTTP status code.
type StatusDescription struct {
	Code        int
	Label       string
	Description string
}

var statusCodes = map[int]StatusDescription{
	200: {
		Label:       "OK",
		Description: "Request was a success. Only process data from the service when you receive this code",
	},
	400: {
		Label: "Bad Request",
		Description: "Occurs during exceptional circumstances such as the service is unable to find an ID. " +
			"Check if the response Content-type was JSON. If so the JSON object is an exception hash " +
			"with the message keyed under error",
	},
	404: {
		Label:       "Not Found",
		Description: "Indicates a badly formatted request. Check your URL",
	},
	415: {
		Label: "Unsupported Media Type",
		Description: "The server is refusing to service the request because the entity of the request is in a " +
			"format not supported by the requested resource for the requested method",
	},
	429: {
		Label: "Too Many Requests",
		Description: "You have been rate-limited; wait and retry. The headers X-RateLimit-Reset, X-RateLimit-Limit " +
			"and X-RateLimit-Remaining will inform you of how long you have until your limit is reset and " +
			"what that limit was. If you get this response and have not exceeded your limit then check if " +
			"you have made too many requests per second.",
	},
	500: {
		Label: "Internal Server Error",
		Description: "This error is not documented. Maybe there is an error in user input or REST server could have " +
			"problems. Try to do the query with curl. If your data input and query are correct, contact the " +
			"pdbe team",
	},
	503: {
		Label:       "Service Unavailable",
		Description: "The service is temporarily down; retry after a pause",
	},
}

// IsDocumented reports whether code has its own entry in the taxonomy.
func IsDocumented(code int) bool {
	_, ok := statusCodes[code]
	return ok
}

// DescribeStatus returns the taxonomy entry for code, falling back to 400 or 500 for
// undocumented codes. The label of a fallback is the standard HTTP status text.
func DescribeStatus(code int) StatusDescription {
	if d, ok := statusCodes[code]; ok {
		d.Code = code
		return d
	}

	fallback := statusCodes[http.StatusInternalServerError]
	if code < http.StatusInternalServerError {
		fallback = statusCodes[http.StatusBadRequest]
	}

	label := http.StatusText(code)
	if label == "" {
		label = "Unknown"
	}
	return StatusDescription{
		Code:        code,
		Label:       label,
		Description: fallback.Description,
	}
}
