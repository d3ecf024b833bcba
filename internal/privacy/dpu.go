package privacy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// DPU implements the Differential Privacy Unit: timestamp
// anonymization, randomized response, vector perturbation, session
// fingerprinting, and structural hashing. Noise generation uses
// math/rand/v2 (statistically sound, not security-sensitive); the session
// fingerprint's HMAC uses crypto/hmac + crypto/sha256 since it sits on a
// security boundary.
type DPU struct {
	// Epsilon controls Gaussian noise magnitude for vector perturbation (default 1.0).
	Epsilon float64
}

// NewDPU returns a DPU configured with the default epsilon of 1.0.
func NewDPU() *DPU {
	return &DPU{Epsilon: 1.0}
}

const laplaceScaleMS = 30_000.0   // 30s
const bucketMS = 5 * 60 * 1000    // 5-min boundary
const sessionBucketMS = 900_000   // 15-min session rotation

// AnonymizeTimestamp adds Laplacian noise (scale 30s) to a monotonic
// timestamp (ms), then floors to the nearest 5-minute boundary, returning
// an ISO8601 string at 5-minute granularity.
func (d *DPU) AnonymizeTimestamp(tsMS int64, now time.Time) string {
	noise := laplaceNoise(laplaceScaleMS)
	noisy := float64(tsMS) + noise
	bucketed := math.Floor(noisy/bucketMS) * bucketMS

	// tsMS is a monotonic device clock reading, not wall-clock; anchor the
	// bucketed offset to the wall-clock `now` so the emitted string is a
	// real calendar timestamp.
	delta := time.Duration(bucketed-float64(tsMS)) * time.Millisecond
	wall := now.Add(delta)
	wallBucketed := wall.Truncate(5 * time.Minute).UTC()
	return wallBucketed.Format(time.RFC3339)
}

// laplaceNoise draws from a Laplace(0, scale) distribution via inverse-CDF
// sampling of a uniform variate.
func laplaceNoise(scale float64) float64 {
	u := rand.Float64() - 0.5
	sign := 1.0
	if u < 0 {
		sign = -1.0
	}
	return -scale * sign * math.Log(1-2*math.Abs(u))
}

// RandomizedResponse flips a boolean sensitive flag with probability p
// (default 0.10), independently per call. No Secure Event field currently
// carries a boolean flag across the privacy boundary (the raw payload
// booleans are classifier inputs destroyed with the Raw Event), so the
// pipeline does not call this today; any future flag-bearing field must
// pass through it before emission.
func (d *DPU) RandomizedResponse(value bool, p float64) bool {
	if rand.Float64() < p {
		return !value
	}
	return value
}

// PerturbVector adds i.i.d. Gaussian noise with sigma = sqrt(2)/epsilon to
// each dimension, then quantizes to 4 decimals.
func (d *DPU) PerturbVector(v []float64) []float64 {
	eps := d.Epsilon
	if eps <= 0 {
		eps = 1.0
	}
	sigma := math.Sqrt2 / eps
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = quantize4(x + rand.NormFloat64()*sigma)
	}
	return out
}

func quantize4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// SessionFingerprint computes the 64-char hex HMAC-SHA256 session
// fingerprint over deviceId|userId|floor(sessionStartMS/900000), keyed by
// deviceId. Holding (deviceId, userId) fixed, fingerprints
// computed >=15 min apart differ; within the same 15-min bucket they are
// identical.
func (d *DPU) SessionFingerprint(deviceID, userID string, sessionStartMS int64) string {
	bucket := sessionStartMS / sessionBucketMS
	msg := fmt.Sprintf("%s|%s|%d", deviceID, userID, bucket)
	mac := hmac.New(sha256.New, []byte(deviceID))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// StructuralHash is the 8-hex FNV-1a hash over domPath.join('>')+':'+tagName.
// Exposed here (in addition to internal/fingerprint.StructuralHash)
// because the DPU operates directly on the joined-path/tag strings the
// pipeline already has in hand for non-element-fingerprint callers.
func (d *DPU) StructuralHash(domPath []string, tagName string) string {
	return fnv1a32(strings.Join(domPath, ">") + ":" + tagName)
}

// HashURL hashes a URL's path+query, preserving only the origin in the
// clear: origin + "/" + fnv1a(path+search) as hex.
func (d *DPU) HashURL(origin, pathAndSearch string) string {
	return origin + "/" + fnv1a32(pathAndSearch)
}

const hexDigits = "0123456789abcdef"

// fnv1a32 returns the 8-hex FNV-1a hash of s.
func fnv1a32(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = hexDigits[sum&0xf]
		sum >>= 4
	}
	return string(out)
}
