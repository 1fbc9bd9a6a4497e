package ids

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// suffixLen is the length of the random base36 suffix
const suffixLen = 9

/* New returns an opaque identifier of the form <prefix>_<unix millis>_<base36>
 * The random part comes from a v4 UUID so identifiers are never reused in practice
 */
func New(prefix string) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[8:])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) < suffixLen {
		suffix = strings.Repeat("0", suffixLen-len(suffix)) + suffix
	}
	return prefix + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + suffix[len(suffix)-suffixLen:]
}
