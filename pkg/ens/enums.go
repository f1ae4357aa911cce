package ens

import "strings"

// PageType is a page type or subtype.
// The type dc is undocumented but appears as a parent of ems.
type PageType string

const (
	PageTypeCC        PageType = "cc"
	PageTypeDC        PageType = "dc"
	PageTypeDCF       PageType = "dcf"
	PageTypeEC        PageType = "ec"
	PageTypeEcommerce PageType = "ecommerce"
	PageTypeEMS       PageType = "ems"
	PageTypeET        PageType = "et"
	PageTypeEV        PageType = "ev"
	PageTypeLeadgen   PageType = "leadgen"
	PageTypeMem       PageType = "mem"
	PageTypeND        PageType = "nd"
	PageTypePet       PageType = "pet"
	PageTypePremium   PageType = "premium"
	PageTypeSH        PageType = "sh"
	PageTypeSP        PageType = "sp"
	PageTypeSS        PageType = "ss"
	PageTypeSurvey    PageType = "survey"
	PageTypeTP        PageType = "tp"
	PageTypeUnsub     PageType = "unsub"
)

// PageTypes lists every known page type
var PageTypes = []PageType{
	PageTypeCC, PageTypeDC, PageTypeDCF, PageTypeEC, PageTypeEcommerce, PageTypeEMS,
	PageTypeET, PageTypeEV, PageTypeLeadgen, PageTypeMem, PageTypeND, PageTypePet,
	PageTypePremium, PageTypeSH, PageTypeSP, PageTypeSS, PageTypeSurvey, PageTypeTP,
	PageTypeUnsub,
}

// PageStatus is the campaign status of a page
type PageStatus string

const (
	PageStatusBlock  PageStatus = "block"
	PageStatusClose  PageStatus = "close"
	PageStatusDelete PageStatus = "delete"
	PageStatusLive   PageStatus = "live"
	PageStatusNew    PageStatus = "new"
	PageStatusTested PageStatus = "tested"
)

// PageStatuses lists every known page status
var PageStatuses = []PageStatus{
	PageStatusBlock, PageStatusClose, PageStatusDelete, PageStatusLive, PageStatusNew, PageStatusTested,
}

// PageRequestResultStatus is the outcome of a page process request
type PageRequestResultStatus string

const (
	PageRequestResultSuccess PageRequestResultStatus = "success"
	PageRequestResultError   PageRequestResultStatus = "error"
)

var pageRequestResultStatuses = []PageRequestResultStatus{PageRequestResultSuccess, PageRequestResultError}

// PageRequestResultType is the transaction type of a processed page
type PageRequestResultType string

const (
	PageRequestResultCreditSingle       PageRequestResultType = "credit_single"
	PageRequestResultCreditRecurring    PageRequestResultType = "credit_recurring"
	PageRequestResultUnmanagedRecurring PageRequestResultType = "recur_unmanaged"
)

var pageRequestResultTypes = []PageRequestResultType{
	PageRequestResultCreditSingle, PageRequestResultCreditRecurring, PageRequestResultUnmanagedRecurring,
}

// PaymentType is the payment method reported by a processed page
type PaymentType string

const (
	PaymentTypeACH                PaymentType = "ach"
	PaymentTypeACHEFT             PaymentType = "acheft"
	PaymentTypeAmericanExpress    PaymentType = "american express"
	PaymentTypeAmericanExpressSSL PaymentType = "amex-ssl"
	PaymentTypeAmex               PaymentType = "amex"
	PaymentTypeAMX                PaymentType = "amx"
	PaymentTypeAX                 PaymentType = "ax"
	PaymentTypeBACS               PaymentType = "bacs"
	PaymentTypeBACSDebit          PaymentType = "bacs_debit"
	PaymentTypeBank               PaymentType = "bank"
	PaymentTypeCard               PaymentType = "card"
	PaymentTypeCartesBancaires    PaymentType = "cartes_bancaires"
	PaymentTypeChecking           PaymentType = "checking"
	PaymentTypeDDT                PaymentType = "ddt"
	PaymentTypeDelta              PaymentType = "delta"
	PaymentTypeDI                 PaymentType = "di"
	PaymentTypeDiners             PaymentType = "diners"
	PaymentTypeDirectDebit        PaymentType = "direct debit"
	PaymentTypeDiscover           PaymentType = "discover"
	PaymentTypeECheck             PaymentType = "echeck"
	PaymentTypeEC                 PaymentType = "ec"
	PaymentTypeECMCSSL            PaymentType = "ecmc-ssl"
	PaymentTypeEFT                PaymentType = "eft"
	PaymentTypeJCB                PaymentType = "jcb"
	PaymentTypeMaster             PaymentType = "master"
	PaymentTypeMastercard         PaymentType = "mastercard"
	PaymentTypeMC                 PaymentType = "mc"
	PaymentTypePayPal             PaymentType = "paypal"
	PaymentTypeSavings            PaymentType = "savings"
	PaymentTypeSEPA               PaymentType = "sepa"
	PaymentTypeSEPADebit          PaymentType = "sepa_debit"
	PaymentTypeUnionPay           PaymentType = "unionpay"
	PaymentTypeVenmo              PaymentType = "venmo"
	PaymentTypeVI                 PaymentType = "vi"
	PaymentTypeVisa               PaymentType = "visa"
	PaymentTypeVisaElectron       PaymentType = "visa electron"
	PaymentTypeVisaSSL            PaymentType = "visa-ssl"
)

var paymentTypes = []PaymentType{
	PaymentTypeACH, PaymentTypeACHEFT, PaymentTypeAmericanExpress, PaymentTypeAmericanExpressSSL,
	PaymentTypeAmex, PaymentTypeAMX, PaymentTypeAX, PaymentTypeBACS, PaymentTypeBACSDebit,
	PaymentTypeBank, PaymentTypeCard, PaymentTypeCartesBancaires, PaymentTypeChecking,
	PaymentTypeDDT, PaymentTypeDelta, PaymentTypeDI, PaymentTypeDiners, PaymentTypeDirectDebit,
	PaymentTypeDiscover, PaymentTypeECheck, PaymentTypeEC, PaymentTypeECMCSSL, PaymentTypeEFT,
	PaymentTypeJCB, PaymentTypeMaster, PaymentTypeMastercard, PaymentTypeMC, PaymentTypePayPal,
	PaymentTypeSavings, PaymentTypeSEPA, PaymentTypeSEPADebit, PaymentTypeUnionPay,
	PaymentTypeVenmo, PaymentTypeVI, PaymentTypeVisa, PaymentTypeVisaElectron, PaymentTypeVisaSSL,
}

// RecurringFrequency is the schedule of a recurring payment
type RecurringFrequency string

const (
	RecurringAnnual     RecurringFrequency = "annual"
	RecurringDaily      RecurringFrequency = "daily"
	RecurringMonthly    RecurringFrequency = "monthly"
	RecurringQuarterly  RecurringFrequency = "quarterly"
	RecurringSemiAnnual RecurringFrequency = "semi_annual"
)

var recurringFrequencies = []RecurringFrequency{
	RecurringAnnual, RecurringDaily, RecurringMonthly, RecurringQuarterly, RecurringSemiAnnual,
}

// SupporterQuestionType is the kind of a supporter question
type SupporterQuestionType string

const (
	QuestionTypeConf SupporterQuestionType = "conf"
	QuestionTypeGen  SupporterQuestionType = "gen"
	QuestionTypeOpt  SupporterQuestionType = "opt"
)

var supporterQuestionTypes = []SupporterQuestionType{QuestionTypeConf, QuestionTypeGen, QuestionTypeOpt}

// SupporterQuestionHTMLFieldType is the form control used to render a question
type SupporterQuestionHTMLFieldType string

const (
	HTMLFieldCalendar  SupporterQuestionHTMLFieldType = "calendar"
	HTMLFieldCheckbox  SupporterQuestionHTMLFieldType = "checkbox"
	HTMLFieldHidden    SupporterQuestionHTMLFieldType = "hidden"
	HTMLFieldImgSelect SupporterQuestionHTMLFieldType = "imgselect"
	HTMLFieldPassword  SupporterQuestionHTMLFieldType = "password"
	HTMLFieldRadio     SupporterQuestionHTMLFieldType = "radio"
	HTMLFieldSelect    SupporterQuestionHTMLFieldType = "select"
	HTMLFieldTelephone SupporterQuestionHTMLFieldType = "telephone"
	HTMLFieldText      SupporterQuestionHTMLFieldType = "text"
	HTMLFieldTextarea  SupporterQuestionHTMLFieldType = "textarea"
)

var supporterQuestionHTMLFieldTypes = []SupporterQuestionHTMLFieldType{
	HTMLFieldCalendar, HTMLFieldCheckbox, HTMLFieldHidden, HTMLFieldImgSelect, HTMLFieldPassword,
	HTMLFieldRadio, HTMLFieldSelect, HTMLFieldTelephone, HTMLFieldText, HTMLFieldTextarea,
}

// lookupEnum matches s against values ignoring case
func lookupEnum[T ~string](s string, values []T) (T, bool) {
	for _, v := range values {
		if strings.EqualFold(string(v), s) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func parseEnum[T ~string](kind, s string, values []T) (T, error) {
	v, ok := lookupEnum(s, values)
	if !ok {
		return v, &EnumError{Kind: kind, Value: s}
	}
	return v, nil
}

// lookupOptional returns nil for an absent or unrecognized value
func lookupOptional[T ~string](s *string, values []T) *T {
	if s == nil {
		return nil
	}
	v, ok := lookupEnum(*s, values)
	if !ok {
		return nil
	}
	return &v
}

// ParsePageType parses a page type, failing on unknown values
func ParsePageType(s string) (PageType, error) {
	return parseEnum("page type", s, PageTypes)
}

// LookupPageType parses a page type, reporting false on unknown values
func LookupPageType(s string) (PageType, bool) {
	return lookupEnum(s, PageTypes)
}

// ParsePageStatus parses a page status, failing on unknown values
func ParsePageStatus(s string) (PageStatus, error) {
	return parseEnum("page status", s, PageStatuses)
}

// ParsePageRequestResultStatus parses a page request result status
func ParsePageRequestResultStatus(s string) (PageRequestResultStatus, error) {
	return parseEnum("page request result status", s, pageRequestResultStatuses)
}

// LookupPageRequestResultType parses a page request result type
func LookupPageRequestResultType(s string) (PageRequestResultType, bool) {
	return lookupEnum(s, pageRequestResultTypes)
}

// LookupPaymentType parses a payment type
func LookupPaymentType(s string) (PaymentType, bool) {
	return lookupEnum(s, paymentTypes)
}

// LookupRecurringFrequency parses a recurring frequency
func LookupRecurringFrequency(s string) (RecurringFrequency, bool) {
	return lookupEnum(s, recurringFrequencies)
}

// ParseSupporterQuestionType parses a supporter question type, failing on unknown values
func ParseSupporterQuestionType(s string) (SupporterQuestionType, error) {
	return parseEnum("supporter question type", s, supporterQuestionTypes)
}

// LookupSupporterQuestionHTMLFieldType parses a question HTML field type
func LookupSupporterQuestionHTMLFieldType(s string) (SupporterQuestionHTMLFieldType, bool) {
	return lookupEnum(s, supporterQuestionHTMLFieldTypes)
}
