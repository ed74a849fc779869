// Package sts builds and presigns the STS GetCallerIdentity request that
// backs the Kubernetes bearer token for EKS clusters. No request is ever sent
// to AWS: the API server validates the token by re-deriving the signature
// from the presigned URL embedded in it.
package sts

import (
	"fmt"
	"net/url"
	"time"

	"github.com/fitbeard/vault-kube-token/internal/errs"
)

const (
	// globalHost is the region-less STS endpoint used when no region is
	// configured. Requests against it are signed with globalRegion; the host
	// and the credential-scope region must always agree or the signature
	// cannot be verified.
	globalHost   = "sts.amazonaws.com"
	globalRegion = "us-east-1"

	serviceName = "sts"
	requestPath = "/"

	actionParam  = "GetCallerIdentity"
	versionParam = "2011-06-15"

	// clusterIDHeader carries the cluster name as a signed header so that a
	// token minted for one cluster cannot be replayed against another.
	clusterIDHeader = "x-k8s-aws-id"

	// roleArnParam embeds a role ARN as a signed query parameter. The
	// cluster-side authenticator derives the assumed-role identity from it;
	// no AssumeRole call is made here.
	roleArnParam = "RoleArn"

	amzDateFormat   = "20060102T150405Z"
	scopeDateFormat = "20060102"
)

// Params selects the cluster identity the token is minted for.
type Params struct {
	// Region of the STS endpoint. Empty selects the global endpoint.
	Region string
	// ClusterID is the EKS cluster name. Required.
	ClusterID string
	// RoleARN optionally names a role to embed as a signed query parameter.
	RoleARN string
}

// Header is one signed header. Order of a header slice is signing order.
type Header struct {
	Name  string
	Value string
}

// Request is the unsigned descriptor for a presigned GetCallerIdentity call.
// Time is the single timestamp for the whole build/sign pass; Presign derives
// the credential scope from it so the request can never be signed with a
// different clock reading than it was built with.
type Request struct {
	Method  string
	Host    string
	Path    string
	Region  string
	Time    time.Time
	Query   url.Values
	Headers []Header
}

// BuildRequest constructs the unsigned request descriptor for the given
// parameters at the given instant. It performs no I/O.
func BuildRequest(p Params, now time.Time) (Request, error) {
	if p.ClusterID == "" {
		return Request{}, &errs.ConfigurationError{
			Err: fmt.Errorf("EKS cluster name must not be empty"),
		}
	}

	host, region := globalHost, globalRegion
	if p.Region != "" {
		host = fmt.Sprintf("sts.%s.amazonaws.com", p.Region)
		region = p.Region
	}

	query := url.Values{
		"Action":          []string{actionParam},
		"Version":         []string{versionParam},
		"X-Amz-Algorithm": []string{algorithm},
		"X-Amz-Date":      []string{now.UTC().Format(amzDateFormat)},
	}
	if p.RoleARN != "" {
		query.Set(roleArnParam, p.RoleARN)
	}

	return Request{
		Method: "GET",
		Host:   host,
		Path:   requestPath,
		Region: region,
		Time:   now.UTC(),
		Query:  query,
		Headers: []Header{
			{Name: "host", Value: host},
			{Name: clusterIDHeader, Value: p.ClusterID},
		},
	}, nil
}
