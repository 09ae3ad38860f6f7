// Package egnyte pushes the register's books and records archives
// into the firm's Egnyte shared drive.
package egnyte

import (
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/alpacahq/gopaca/env"
	"github.com/valyala/fasthttp"
)

// Upload writes a zip archive to the given path under /Shared. Egnyte
// creates intermediate folders as needed.
func Upload(filePath string, data []byte) error {
	u, err := url.Parse(
		"https://" + path.Join(
			env.GetVar("EGNYTE_DOMAIN"),
			"pubapi/v1/fs-content/Shared",
			filePath,
		))
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)

	req.SetRequestURI(u.String())
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", env.GetVar("EGNYTE_TOKEN")))
	req.Header.SetMethod(http.MethodPost)
	req.Header.SetContentType("application/zip")
	req.SetBody(data)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err = fasthttp.Do(req, resp); err != nil {
		return err
	}

	if resp.StatusCode() > fasthttp.StatusMultipleChoices {
		return fmt.Errorf(
			"egnyte upload failed (path: %v, response: %v)",
			filePath, resp.String())
	}

	return nil
}
