package alexa

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strings"
	"sync"
	"time"
)

// ErrVerification is wrapped by every rejection from Verifier.Verify.
var ErrVerification = errors.New("alexa: request verification failed")

// Signature headers.
const (
	HeaderCertChainURL = "SignatureCertChainUrl"
	HeaderSignature256 = "Signature-256"
)

const (
	// DefaultTolerance is how far a request timestamp may drift from now.
	DefaultTolerance = 150 * time.Second

	certHost   = "s3.amazonaws.com"
	certPrefix = "/echo.api/"
	certSAN    = "echo-api.amazon.com"
)

// Verifier checks that a request really comes from Alexa and is meant for
// this skill.
type Verifier struct {
	// ApplicationIDs, when non-empty, is the allow-list of skill IDs.
	ApplicationIDs []string
	// CheckSignature enables certificate and signature checks.
	CheckSignature bool
	// CheckTimestamp rejects requests stamped more than Tolerance from now.
	CheckTimestamp bool
	Tolerance      time.Duration

	// Roots overrides the system pool for chain verification.
	Roots *x509.CertPool
	// Fetch downloads a certificate chain; defaults to an HTTP GET.
	Fetch func(ctx context.Context, rawURL string) ([]byte, error)
	Now   func() time.Time

	mu    sync.Mutex
	certs map[string]*x509.Certificate
}

// Verify runs every enabled check against one request.
func (v *Verifier) Verify(ctx context.Context, header http.Header, body []byte, env *RequestEnvelope) error {
	now := v.now()

	if v.CheckTimestamp {
		ts, err := env.Request.Time()
		if err != nil {
			return fmt.Errorf("%w: bad timestamp %q", ErrVerification, env.Request.Timestamp)
		}
		tol := v.Tolerance
		if tol <= 0 {
			tol = DefaultTolerance
		}
		if d := now.Sub(ts); d > tol || d < -tol {
			return fmt.Errorf("%w: timestamp %s outside tolerance", ErrVerification, env.Request.Timestamp)
		}
	}

	if len(v.ApplicationIDs) > 0 && !slices.Contains(v.ApplicationIDs, env.ApplicationID()) {
		return fmt.Errorf("%w: application %q not allowed", ErrVerification, env.ApplicationID())
	}

	if !v.CheckSignature {
		return nil
	}
	return v.verifySignature(ctx, header, body, now)
}

func (v *Verifier) verifySignature(ctx context.Context, header http.Header, body []byte, now time.Time) error {
	certURL := header.Get(HeaderCertChainURL)
	if err := ValidateCertURL(certURL); err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(header.Get(HeaderSignature256))
	if err != nil || len(sig) == 0 {
		return fmt.Errorf("%w: missing or malformed signature", ErrVerification)
	}

	cert, err := v.certificate(ctx, certURL, now)
	if err != nil {
		return err
	}
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return fmt.Errorf("%w: signing certificate expired", ErrVerification)
	}

	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: signing key is not RSA", ErrVerification)
	}
	digest := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig); err != nil {
		return fmt.Errorf("%w: bad signature", ErrVerification)
	}
	return nil
}

// certificate returns the verified leaf for certURL, fetching and checking
// the chain on first use.
func (v *Verifier) certificate(ctx context.Context, certURL string, now time.Time) (*x509.Certificate, error) {
	v.mu.Lock()
	cert, ok := v.certs[certURL]
	v.mu.Unlock()
	if ok {
		return cert, nil
	}

	fetch := v.Fetch
	if fetch == nil {
		fetch = httpFetch
	}
	raw, err := fetch(ctx, certURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch certificate: %v", ErrVerification, err)
	}
	cert, err = parseChain(raw, v.Roots, now)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.certs == nil {
		v.certs = make(map[string]*x509.Certificate)
	}
	v.certs[certURL] = cert
	v.mu.Unlock()
	return cert, nil
}

func parseChain(raw []byte, roots *x509.CertPool, now time.Time) (*x509.Certificate, error) {
	var chain []*x509.Certificate
	for {
		var block *pem.Block
		block, raw = pem.Decode(raw)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse certificate: %v", ErrVerification, err)
		}
		chain = append(chain, c)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: empty certificate chain", ErrVerification)
	}

	leaf := chain[0]
	inter := x509.NewCertPool()
	for _, c := range chain[1:] {
		inter.AddCert(c)
	}
	if _, err := leaf.Verify(x509.VerifyOptions{
		DNSName:       certSAN,
		Roots:         roots,
		Intermediates: inter,
		CurrentTime:   now,
	}); err != nil {
		return nil, fmt.Errorf("%w: certificate chain: %v", ErrVerification, err)
	}
	return leaf, nil
}

// ValidateCertURL checks the certificate chain location: https on
// s3.amazonaws.com, port 443 if given, under /echo.api/.
func ValidateCertURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return fmt.Errorf("%w: bad certificate url %q", ErrVerification, raw)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("%w: certificate url scheme %q", ErrVerification, u.Scheme)
	}
	if !strings.EqualFold(u.Hostname(), certHost) {
		return fmt.Errorf("%w: certificate url host %q", ErrVerification, u.Hostname())
	}
	if p := u.Port(); p != "" && p != "443" {
		return fmt.Errorf("%w: certificate url port %q", ErrVerification, p)
	}
	if !strings.HasPrefix(path.Clean(u.Path), certPrefix) {
		return fmt.Errorf("%w: certificate url path %q", ErrVerification, u.Path)
	}
	return nil
}

func (v *Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func httpFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 64<<10))
}
