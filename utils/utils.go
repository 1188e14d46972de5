package utils

import (
	"crypto/md5"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
)

const nilUuid = "00000000-0000-0000-0000-000000000000"

// GenUuidFromStrings derives a uuid that does not depend on the order of its inputs.
func GenUuidFromStrings(uuids ...string) string {
	if len(uuids) == 0 {
		uuids = append(uuids, nilUuid)
	}

	sorted := make([]string, len(uuids))
	copy(sorted, uuids)
	sort.Strings(sorted)

	return uuidHash([]byte(strings.Join(sorted, "")))
}

// GenUuidFromOrderedStrings derives a uuid from its inputs in the given order.
func GenUuidFromOrderedStrings(parts ...string) string {
	if len(parts) == 0 {
		parts = append(parts, nilUuid)
	}
	return uuidHash([]byte(strings.Join(parts, "|")))
}

func uuidHash(b []byte) string {
	h := md5.New()

	h.Write(b)
	sum := h.Sum(nil)
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum).String()
}
