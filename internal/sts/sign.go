package sts

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/fitbeard/vault-kube-token/internal/errs"
)

const (
	algorithm   = "AWS4-HMAC-SHA256"
	requestType = "aws4_request"

	// DefaultPresignExpiry matches the validation window EKS API servers
	// apply to this token family.
	DefaultPresignExpiry = 60 * time.Second
)

// PresignedRequest is the signed form of a Request. RawQuery is frozen in
// canonical (sorted) order with the signature appended last; re-sorting it
// would desynchronize the URL from the signature.
type PresignedRequest struct {
	Method        string
	Host          string
	Path          string
	RawQuery      string
	SignedHeaders []Header
}

// URL reconstructs the full presigned URL.
func (p PresignedRequest) URL() string {
	return "https://" + p.Host + p.Path + "?" + p.RawQuery
}

// Presign applies the SigV4 presigning variant to req using creds. The
// presigned URL expires after expiry (DefaultPresignExpiry when zero). The
// expiry and, when present, the session token are embedded as query
// parameters before signing so both are covered by the signature.
func Presign(req Request, creds aws.Credentials, expiry time.Duration) (PresignedRequest, error) {
	if creds.AccessKeyID == "" {
		return PresignedRequest{}, &errs.CredentialError{
			Err: fmt.Errorf("credential bundle has no access key id"),
		}
	}
	if creds.SecretAccessKey == "" {
		return PresignedRequest{}, &errs.CredentialError{
			Err: fmt.Errorf("credential bundle has no secret access key"),
		}
	}
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}

	scope := credentialScope(req.Time, req.Region)

	// Signing order is canonical (sorted) order. The same slice feeds the
	// X-Amz-SignedHeaders parameter and the canonical request so the two can
	// never disagree.
	headers := sortedHeaders(req.Headers)

	query := cloneValues(req.Query)
	query.Set("X-Amz-Credential", creds.AccessKeyID+"/"+scope)
	query.Set("X-Amz-Expires", strconv.Itoa(int(expiry/time.Second)))
	query.Set("X-Amz-SignedHeaders", signedHeaderNames(headers))
	if creds.SessionToken != "" {
		// Omitted entirely when absent: presence changes the canonical query
		// string and therefore the signature.
		query.Set("X-Amz-Security-Token", creds.SessionToken)
	}

	rawQuery := canonicalQueryString(query)
	canonical := canonicalRequest(req.Method, req.Path, rawQuery, headers)
	toSign := stringToSign(req.Time, scope, canonical)
	key := signingKey(creds.SecretAccessKey, req.Time, req.Region)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(toSign)))

	return PresignedRequest{
		Method:        req.Method,
		Host:          req.Host,
		Path:          req.Path,
		RawQuery:      rawQuery + "&X-Amz-Signature=" + signature,
		SignedHeaders: headers,
	}, nil
}

// canonicalRequest assembles step 1 of the SigV4 computation over headers
// already in signing order. The payload hash is fixed to the digest of an
// empty body since presigned GetCallerIdentity requests carry none.
func canonicalRequest(method, path, rawQuery string, headers []Header) string {
	var canonicalHeaders strings.Builder
	for _, h := range headers {
		canonicalHeaders.WriteString(strings.ToLower(h.Name))
		canonicalHeaders.WriteByte(':')
		canonicalHeaders.WriteString(strings.TrimSpace(h.Value))
		canonicalHeaders.WriteByte('\n')
	}

	return strings.Join([]string{
		method,
		path,
		rawQuery,
		canonicalHeaders.String(),
		signedHeaderNames(headers),
		hexSHA256(nil),
	}, "\n")
}

// sortedHeaders returns a copy of headers in canonical signing order.
func sortedHeaders(headers []Header) []Header {
	sorted := append([]Header(nil), headers...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// credentialScope is date/region/service/terminator for the signing day.
func credentialScope(t time.Time, region string) string {
	return strings.Join([]string{
		t.UTC().Format(scopeDateFormat),
		region,
		serviceName,
		requestType,
	}, "/")
}

// stringToSign assembles step 3 of the SigV4 computation.
func stringToSign(t time.Time, scope, canonical string) string {
	return strings.Join([]string{
		algorithm,
		t.UTC().Format(amzDateFormat),
		scope,
		hexSHA256([]byte(canonical)),
	}, "\n")
}

// signingKey derives the per-day signing key: a four-step HMAC-SHA256 chain
// seeded with the secret key, each step keyed by the previous derivation.
func signingKey(secretAccessKey string, t time.Time, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), []byte(t.UTC().Format(scopeDateFormat)))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(serviceName))
	return hmacSHA256(kService, []byte(requestType))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hexSHA256(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}

// canonicalQueryString renders params in strict ASCII order by name with
// RFC 3986 percent-encoding. url.Values.Encode is unsuitable: it emits '+'
// for spaces and leaves characters unescaped that SigV4 requires escaped.
func canonicalQueryString(params url.Values) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		values := append([]string(nil), params[name]...)
		sort.Strings(values)
		for _, value := range values {
			pairs = append(pairs, uriEscape(name)+"="+uriEscape(value))
		}
	}
	return strings.Join(pairs, "&")
}

// uriEscape percent-encodes everything outside the RFC 3986 unreserved set.
func uriEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func signedHeaderNames(headers []Header) string {
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		names = append(names, strings.ToLower(h.Name))
	}
	return strings.Join(names, ";")
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for name, values := range v {
		out[name] = append([]string(nil), values...)
	}
	return out
}
