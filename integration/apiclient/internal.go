package apiclient

import (
	"fmt"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/valyala/fasthttp"
)

// InternalClient authenticates as a back-office administrator with a
// bearer token, which grants full permission on the register API and
// access to the admin key management party.
type InternalClient struct {
	*RestClient
	adminID string
	token   string
}

type AccessKey struct {
	ID        string     `json:"id"`
	AdminID   string     `json:"admin_id"`
	Secret    string     `json:"secret"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func NewInternalClient(adminID, secret string) (*InternalClient, error) {
	c := &InternalClient{
		RestClient: NewRestClient("", ""),
		adminID:    adminID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "alpaca",
		"sub": map[string]interface{}{
			"id": adminID,
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}
	c.token = signed

	c.RestClient.setHeaderFunc = c.setHeader

	return c, nil
}

func (c *InternalClient) CreateAccessKey() (res *AccessKey, err error) {
	url := fmt.Sprintf("%v/goregistry/api/_admin/v1/admins/%v/access_keys", c.RestClient.baseUrl, c.adminID)
	_, err = c.call(url, "POST", nil, &res)
	return
}

func (c *InternalClient) ListAccessKeys() (res []*AccessKey, err error) {
	url := fmt.Sprintf("%v/goregistry/api/_admin/v1/admins/%v/access_keys", c.RestClient.baseUrl, c.adminID)
	_, err = c.call(url, "GET", nil, &res)
	return
}

func (c *InternalClient) DeleteAccessKey(keyID string) (err error) {
	url := fmt.Sprintf("%v/goregistry/api/_admin/v1/admins/%v/access_keys/%v", c.RestClient.baseUrl, c.adminID, keyID)
	_, err = c.call(url, "DELETE", nil, nil)
	return
}

func (c *InternalClient) setHeader(req *fasthttp.Request) {
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))
	for k, v := range c.RequestHeaders {
		req.Header.Add(k, v)
	}
}
