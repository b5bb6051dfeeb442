// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package metadataapi

import (
	"net"
	"net/http"
	"sync"
)

// ipKey extracts a limiter key from a request's remote address. IPv4
// addresses are used as is and IPv6 addresses are masked to their /64 so a
// client rotating within one subnet counts as one source. Addresses that do
// not parse return an empty key and are not limited.
func ipKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return ""
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return ""
	}
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	mask := net.CIDRMask(64, 128)
	return ip.Mask(mask).String() + "/64"
}

// ipLimiter bounds the number of in-flight requests per source address
type ipLimiter struct {
	inFlight map[string]int
	max      int
	mu       sync.Mutex
}

func newIPLimiter(maxPerIP int) *ipLimiter {
	return &ipLimiter{
		inFlight: make(map[string]int),
		max:      maxPerIP,
	}
}

func (l *ipLimiter) acquire(key string) bool {
	if key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight[key] >= l.max {
		return false
	}
	l.inFlight[key]++
	return true
}

func (l *ipLimiter) release(key string) {
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight[key]--
	if l.inFlight[key] <= 0 {
		delete(l.inFlight, key)
	}
}

// count returns the in-flight requests for a key
func (l *ipLimiter) count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight[key]
}

// wrap rejects requests with 429 while their source is at the limit
func (l *ipLimiter) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ipKey(r.RemoteAddr)
		if !l.acquire(key) {
			writeError(w, http.StatusTooManyRequests)
			return
		}
		defer l.release(key)
		next.ServeHTTP(w, r)
	})
}
