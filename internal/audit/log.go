package audit

import "github.com/KaramelBytes/healthaudit/internal/logging"

var discard = logging.Discard()
