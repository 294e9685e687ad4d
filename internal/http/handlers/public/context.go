package public

import (
	handlershared "github.com/yash9025/WriteOffGenie-sub000/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getPartnerID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "partner_id", "error.partner_id_invalid", "error.partner_id_type_invalid")
}
