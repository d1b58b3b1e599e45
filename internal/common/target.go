package common

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateTarget checks that a job target is an absolute http(s) URL whose
// host belongs to the configured source domain. Subdomains of the domain are
// accepted, unrelated hosts are not.
func ValidateTarget(target, domain string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("url is required")
	}

	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid url: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https")
	}

	host := strings.ToLower(u.Hostname())
	domain = strings.ToLower(strings.TrimSpace(domain))
	if host == "" {
		return fmt.Errorf("url must include a host")
	}

	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return fmt.Errorf("url must be a %s link", domain)
	}

	return nil
}
