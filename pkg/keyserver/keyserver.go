package keyserver

import (
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client talks HKP to a keyserver (keys.openpgp.org style) to fetch
// armored public keys for contact import.
type Client struct {
	baseURL string
	http    *resty.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    resty.New(),
	}
}

func (c *Client) FetchByEmail(email string) (string, error) {
	return c.lookup(email)
}

func (c *Client) FetchByFingerprint(fingerprint string) (string, error) {
	return c.lookup("0x" + fingerprint)
}

func (c *Client) lookup(search string) (string, error) {
	logrus.Debugf("keyserver lookup %s at %s", search, c.baseURL)

	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"op":      "get",
			"options": "mr",
			"search":  search,
		}).
		Get(c.baseURL + "/pks/lookup")
	if err != nil {
		return "", errors.Wrap(err, "keyserver lookup")
	}

	if resp.StatusCode() != 200 {
		return "", errors.Errorf("keyserver returned %d for %s", resp.StatusCode(), search)
	}

	body := string(resp.Body())
	if !strings.Contains(body, "BEGIN PGP PUBLIC KEY BLOCK") {
		return "", errors.Errorf("keyserver response for %s contained no key", search)
	}

	return body, nil
}
