// Package fetch opens vendor feed documents from http(s), ftp, s3 and local
// file locations.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jlaffaye/ftp"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
	"github.com/agentstation/feedsync/pkg/logging"
)

// S3API is the subset of the S3 client used to read feed objects.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves a feed location to a readable stream.
type Opener struct {
	// HTTP serves http and https feeds. A client with
	// constants.FeedFetchTimeout is used when nil.
	HTTP *http.Client

	// FTPUser and FTPPassword are used when the ftp URL carries no
	// credentials. Anonymous login is attempted when both are empty.
	FTPUser     string
	FTPPassword string

	// FTPTimeout bounds the ftp dial.
	FTPTimeout time.Duration

	// S3 serves s3://bucket/key feeds. Such feeds fail when nil.
	S3 S3API
}

// Open returns the document at rawURL. Plain paths are read from disk.
// The caller closes the returned reader.
func (o *Opener) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// bare or windows style path
		return openFile(rawURL)
	}

	logging.Ctx(ctx).Debug().Str("scheme", u.Scheme).Str("url", redact(u)).Msg("Opening feed")

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return o.openHTTP(ctx, u)
	case "file":
		return openFile(u.Path)
	case "ftp":
		return o.openFTP(ctx, u)
	case "s3":
		return o.openS3(ctx, u)
	default:
		return nil, fmt.Errorf("feed scheme %q: %w", u.Scheme, errors.ErrUnsupported)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("feed", path)
		}
		return nil, errors.WrapIO("open", path, err)
	}
	return f, nil
}

func (o *Opener) openHTTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	client := o.HTTP
	if client == nil {
		client = &http.Client{Timeout: constants.FeedFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.WrapResource("fetch", "feed", u.String(), err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &errors.APIError{Service: u.Host, Endpoint: u.String(), Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &errors.APIError{
			Service:    u.Host,
			StatusCode: resp.StatusCode,
			Endpoint:   u.String(),
			Message:    resp.Status,
		}
	}
	return resp.Body, nil
}

// ftpReader closes the ftp session together with the transfer.
type ftpReader struct {
	*ftp.Response
	conn *ftp.ServerConn
}

func (r *ftpReader) Close() error {
	err := r.Response.Close()
	if qerr := r.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}

func (o *Opener) openFTP(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	host := u.Host
	if u.Port() == "" {
		host += ":21"
	}

	timeout := o.FTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, &errors.APIError{Service: "ftp", Endpoint: host, Message: err.Error(), Err: err}
	}

	user, password := o.FTPUser, o.FTPPassword
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	if user == "" {
		user, password = "anonymous", "anonymous"
	}

	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, &errors.APIError{Service: "ftp", StatusCode: http.StatusUnauthorized, Endpoint: host, Message: err.Error(), Err: err}
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		_ = conn.Quit()
		return nil, errors.WrapResource("retrieve", "feed", u.Path, err)
	}
	return &ftpReader{Response: resp, conn: conn}, nil
}

func (o *Opener) openS3(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if o.S3 == nil {
		return nil, errors.NewConfigError("fetch", "s3 feed requested but no S3 client configured", nil)
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.NewValidationError("feed_url", u.String(), "s3 url needs a bucket and a key")
	}

	out, err := o.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, &errors.APIError{Service: "s3", Endpoint: u.String(), Message: err.Error(), Err: err}
	}
	return out.Body, nil
}

// redact drops credentials from a URL for logging.
func redact(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	c := *u
	c.User = url.User(u.User.Username())
	return c.String()
}
