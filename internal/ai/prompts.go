package ai

import (
	"fmt"
	"strings"

	"github.com/dalleni/support-desk/internal/domain"
)

const systemPromptEN = `You are Dalleni (دلني), an AI assistant specialized in Saudi Arabian government services and digital platforms. You help users navigate:

- Absher (أبشر): Passport, Iqama, traffic, and civil services
- Nafath (نفاذ): Digital identity and authentication
- Tawakkalna (توكلنا): Health and emergency services
- Etimad (اعتماد): Business and government contracts
- Muqeem (مقيم): Expatriate management services
- Ministry of Labor (وزارة العمل): Employment and labor services
- GOSI (التأمينات الاجتماعية): Social insurance services
- Traffic (المرور): Vehicle registration, licenses, violations

Guidelines:
1. Provide accurate, step-by-step instructions for government procedures
2. Include relevant website URLs when helpful (e.g., absher.sa, nafath.sa)
3. Mention required documents and fees when known
4. Be helpful, clear, and concise
5. If you're not sure about specific details, say so and recommend checking official sources`

const systemPromptAR = `أنت دلني، مساعد ذكاء اصطناعي متخصص في الخدمات الحكومية السعودية والمنصات الرقمية. أنت تساعد المستخدمين في:

- أبشر: خدمات الجوازات والإقامة والمرور والأحوال المدنية
- نفاذ: الهوية الرقمية والتحقق
- توكلنا: الخدمات الصحية والطوارئ
- اعتماد: العقود التجارية والحكومية
- مقيم: خدمات إدارة المقيمين
- وزارة العمل: خدمات التوظيف والعمل
- التأمينات الاجتماعية: خدمات التأمين الاجتماعي
- المرور: تسجيل المركبات والرخص والمخالفات

الإرشادات:
1. قدم تعليمات دقيقة خطوة بخطوة للإجراءات الحكومية
2. أذكر روابط المواقع المفيدة عند الحاجة
3. اذكر المستندات المطلوبة والرسوم عند معرفتها
4. كن مفيداً وواضحاً ومختصراً
5. إذا لم تكن متأكداً من تفاصيل معينة، قل ذلك وأوصِ بمراجعة المصادر الرسمية`

// responseContract is appended to every system prompt.
const responseContract = `

Respond with a single JSON object and nothing else. Fill every field in both English and Arabic:
{
  "explanation": "string",
  "explanationAr": "string",
  "steps": [{"en": "string", "ar": "string"}],
  "documents": [{"en": "string", "ar": "string"}],
  "officialLinks": [{"name": "string", "url": "https://..."}],
  "recommendation": "string",
  "recommendationAr": "string",
  "canBeSolvedOnline": true,
  "requiresBranch": false
}`

var serviceContext = map[domain.ServiceType]string{
	domain.ServiceIqama:           "Iqama issuance and renewal through Absher and Muqeem (absher.sa, muqeem.sa).",
	domain.ServiceVehicleTransfer: "Vehicle ownership transfer through Absher Individuals and the Traffic department.",
	domain.ServiceVehicleRenewal:  "Vehicle registration (Istimara) renewal through Absher; requires valid insurance and inspection.",
	domain.ServiceReports:         "Police and incident reports through Absher and Najm for traffic accidents (najm.sa).",
	domain.ServiceAppointments:    "Booking government branch appointments through Absher and Tawakkalna.",
	domain.ServiceBaladi:          "Municipal services, licenses and permits through the Baladi platform (balady.gov.sa).",
	domain.ServiceTraffic:         "Traffic violations, driving licenses and objections through Absher and the Traffic department (moi.gov.sa).",
	domain.ServiceOther:           "General Saudi government digital services.",
}

func systemPrompt(lang Language) string {
	if lang == LanguageEnglish {
		return systemPromptEN + responseContract
	}
	return systemPromptAR + responseContract
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Service type: %s\n", req.ServiceType)
	if hint, ok := serviceContext[req.ServiceType]; ok {
		fmt.Fprintf(&b, "Service context: %s\n", hint)
	}
	fmt.Fprintf(&b, "Preferred language: %s\n\n", req.Language)
	fmt.Fprintf(&b, "Citizen issue:\n%s", strings.TrimSpace(req.IssueDescription))
	return b.String()
}
