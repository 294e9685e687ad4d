package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yash9025/WriteOffGenie-sub000/internal/http/response"
	"github.com/yash9025/WriteOffGenie-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// BankAccountCreateRequest 新增银行账户请求
type BankAccountCreateRequest struct {
	HolderName    string `json:"holder_name" binding:"required"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	IFSC          string `json:"ifsc" binding:"required"`
}

// BankAccountUpdateRequest 更新银行账户请求（空字段保持原值）
type BankAccountUpdateRequest struct {
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// ListMyBankAccounts 查询当前伙伴的银行账户
func (h *Handler) ListMyBankAccounts(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	rows, err := h.PartnerService.ListBankAccounts(pid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, rows)
}

// CreateMyBankAccount 新增银行账户
func (h *Handler) CreateMyBankAccount(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	var req BankAccountCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, err := h.PartnerService.CreateBankAccount(pid, service.BankAccountInput{
		HolderName:    strings.TrimSpace(req.HolderName),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSC:          strings.TrimSpace(req.IFSC),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound):
			respondError(c, response.CodeNotFound, "error.partner_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, account)
}

// UpdateMyBankAccount 更新银行账户
func (h *Handler) UpdateMyBankAccount(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req BankAccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	account, err := h.PartnerService.UpdateBankAccount(pid, uint(id), service.BankAccountInput{
		HolderName:    strings.TrimSpace(req.HolderName),
		BankName:      strings.TrimSpace(req.BankName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSC:          strings.TrimSpace(req.IFSC),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBankAccountNotFound):
			respondError(c, response.CodeNotFound, "error.bank_account_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, account)
}

// DeleteMyBankAccount 删除银行账户
func (h *Handler) DeleteMyBankAccount(c *gin.Context) {
	pid, ok := getPartnerID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.PartnerService.DeleteBankAccount(pid, uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrBankAccountNotFound):
			respondError(c, response.CodeNotFound, "error.bank_account_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}
