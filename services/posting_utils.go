package services

import (
	"fmt"
	"html"
	"strings"

	"github.com/tonypoem-foundation/site-backend/config"
)

// GetBaseURL returns the public site URL used in links inside emails.
func GetBaseURL(cfg map[string]string) string {
	return strings.TrimSuffix(config.GetString(cfg, "BASE_URL", ""), "/")
}

// BuildPageURL joins the site URL and a route such as a record slug.
func BuildPageURL(baseURL, route string) string {
	if baseURL == "" || route == "" {
		return ""
	}
	return baseURL + "/" + strings.TrimPrefix(route, "/")
}

// detailRows renders label/value pairs as an HTML table, skipping blanks.
// Values are escaped; they come straight from public forms.
func detailRows(pairs ...[2]string) string {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) == "" {
			continue
		}
		fmt.Fprintf(&sb, "<tr><th align=\"left\">%s</th><td>%s</td></tr>",
			html.EscapeString(p[0]), strings.ReplaceAll(html.EscapeString(p[1]), "\n", "<br>"))
	}
	sb.WriteString("</table>")
	return sb.String()
}
