package upstream

// headerSpec collects the per-request variations on the provider's browser
// shaped header set.
type headerSpec struct {
	accept         string
	acceptLanguage string
	referer        string
	secFetchSite   string
}

const userAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1"

// buildHeaders produces the header set the provider expects on every call.
// The provider fingerprints requests against a web client, so the full
// browser header surface is reproduced, not just the auth fields.
func (c *Client) buildHeaders(spec headerSpec) map[string]string {
	if spec.accept == "" {
		spec.accept = "*/*"
	}
	if spec.acceptLanguage == "" {
		spec.acceptLanguage = "zh,zh-CN;q=0.9,en;q=0.8,ja;q=0.7"
	}
	if spec.referer == "" {
		spec.referer = c.cfg.BaseURL
	}
	if spec.secFetchSite == "" {
		spec.secFetchSite = "same-origin"
	}

	headers := map[string]string{
		"accept":          spec.accept,
		"accept-language": spec.acceptLanguage,
		"cache-control":   "no-cache",
		"content-type":    "application/json",
		"origin":          c.cfg.BaseURL,
		"pragma":          "no-cache",
		"priority":        "u=1, i",
		"referer":         spec.referer,
		"sec-fetch-dest":  "empty",
		"sec-fetch-mode":  "cors",
		"sec-fetch-site":  spec.secFetchSite,
		"user-agent":      userAgent,
		"x-app-id":        c.cfg.AppID,
		"x-device-id":     c.deviceID,
		"x-language":      "en",
		"x-platform":      "web",
	}

	if token := c.Token(); token != "" {
		headers["token"] = token
	}

	return headers
}
