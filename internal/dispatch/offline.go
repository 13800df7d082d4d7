package dispatch

import (
	"fmt"
	"strings"
)

// offlineRoute is one entry in the rule router: a disjunction of
// keywords and a template taking the start and end dates. Group order
// is significant; earlier groups win even when a later group's
// keyword also appears in the question.
type offlineRoute struct {
	keywords []string
	query    func(startDate, endDate string) string
}

var offlineRoutes = []offlineRoute{
	{
		keywords: []string{"total persons"},
		query: func(_, _ string) string {
			return "SELECT COUNT(*) as Total_Persons_In_System FROM person WHERE voided = 0"
		},
	},
	{
		keywords: []string{"growth"},
		query: func(_, _ string) string {
			return `SELECT DATE_FORMAT(date_created, '%Y-%m') as Month, COUNT(*) as New_Registrations
FROM person
WHERE voided = 0
GROUP BY Month
ORDER BY Month DESC LIMIT 12`
		},
	},
	{
		keywords: []string{"registered", "registration count"},
		query: func(start, end string) string {
			return fmt.Sprintf(`SELECT COUNT(*) as Registrations_In_Period
FROM person pe
WHERE voided = 0 AND DATE(pe.date_created) BETWEEN '%s' AND '%s'`, start, end)
		},
	},
	{
		keywords: []string{"appointment", "rdv"},
		query: func(start, end string) string {
			return fmt.Sprintf(`SELECT pn.given_name as First_Name, pn.family_name as Last_Name,
       e.encounter_datetime as Visit_Date, et.name as Visit_Type
FROM encounter e
JOIN encounter_type et ON e.encounter_type = et.encounter_type_id
JOIN person_name pn ON e.patient_id = pn.person_id
WHERE e.voided = 0 AND DATE(e.encounter_datetime) BETWEEN '%s' AND '%s'
ORDER BY e.encounter_datetime DESC LIMIT 50`, start, end)
		},
	},
	{
		keywords: []string{"anc"},
		query: func(start, end string) string {
			return fmt.Sprintf(`SELECT
    pn.given_name as First_Name,
    pn.family_name as Last_Name,
    DATE(e.encounter_datetime) as Date,
    cn_question.name as ANC_Observation,
    COALESCE(o.value_numeric, o.value_text, cn_answer.name) as Result
FROM obs o
JOIN encounter e ON o.encounter_id = e.encounter_id
JOIN person_name pn ON e.patient_id = pn.person_id
JOIN concept_name cn_question ON o.concept_id = cn_question.concept_id
     AND cn_question.concept_name_type = 'FULLY_SPECIFIED'
     AND cn_question.locale = 'en'
LEFT JOIN concept_name cn_answer ON o.value_coded = cn_answer.concept_id
     AND cn_answer.concept_name_type = 'FULLY_SPECIFIED'
     AND cn_answer.locale = 'en'
WHERE o.voided = 0
AND (
    cn_question.name LIKE '%%ANC%%'
    OR cn_question.name LIKE '%%Pregnancy%%'
    OR cn_question.name LIKE '%%Gravida%%'
    OR cn_question.name LIKE '%%Parity%%'
    OR cn_question.name LIKE '%%Estimated date of confinement%%'
)
AND DATE(e.encounter_datetime) BETWEEN '%s' AND '%s'
ORDER BY e.encounter_datetime DESC LIMIT 50`, start, end)
		},
	},
	{
		keywords: []string{"vitals"},
		query: func(start, end string) string {
			return fmt.Sprintf(`SELECT
    pn.given_name as First_Name,
    pn.family_name as Last_Name,
    DATE(e.encounter_datetime) as Date,
    MAX(CASE WHEN cn.name LIKE '%%Weight%%' THEN o.value_numeric END) as Weight_KG,
    MAX(CASE WHEN cn.name LIKE '%%Height%%' THEN o.value_numeric END) as Height_CM,
    MAX(CASE WHEN cn.name LIKE '%%Systolic%%' THEN o.value_numeric END) as BP_Systolic,
    MAX(CASE WHEN cn.name LIKE '%%Diastolic%%' THEN o.value_numeric END) as BP_Diastolic
FROM obs o
JOIN encounter e ON o.encounter_id = e.encounter_id
JOIN concept_name cn ON o.concept_id = cn.concept_id
JOIN person_name pn ON e.patient_id = pn.person_id
WHERE o.voided = 0 AND DATE(e.encounter_datetime) BETWEEN '%s' AND '%s'
GROUP BY e.encounter_id, pn.given_name, pn.family_name, DATE(e.encounter_datetime)
HAVING Weight_KG IS NOT NULL OR BP_Systolic IS NOT NULL
ORDER BY Date DESC LIMIT 50`, start, end)
		},
	},
	{
		keywords: []string{"admitted", "ipd", "staying"},
		query: func(_, _ string) string {
			return `SELECT pn.given_name as First_Name, pn.family_name as Last_Name,
       v.date_started as Admitted_On, vt.name as Visit_Type
FROM visit v
JOIN visit_type vt ON v.visit_type_id = vt.visit_type_id
JOIN person_name pn ON v.patient_id = pn.person_id
WHERE v.voided = 0 AND v.date_stopped IS NULL
ORDER BY v.date_started DESC LIMIT 50`
		},
	},
}

// fallbackQuery names the degraded mode in its own result so callers
// can see that routing matched nothing.
const fallbackQuery = "SELECT 'Mode: Offline Fallback' as Status, COUNT(*) as Total_Active_Patients FROM patient WHERE voided = 0"

// routeOffline matches the lower-cased question against the ordered
// keyword groups.
func routeOffline(q, startDate, endDate string) (string, bool) {
	for _, route := range offlineRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(q, kw) {
				return route.query(startDate, endDate), true
			}
		}
	}
	return "", false
}
