package sqlinline

const QSelectClothes = `--sql 953679f7-6900-431f-8686-115111faee35
select id, coalesce(name, ''), coalesce(type, ''), coalesce(description, '')
from clothes
order by created_at desc
limit $1`

const QSelectClothesByIDs = `--sql 366882c7-f79b-4b88-be71-23382c3cee24
select id, coalesce(name, ''), coalesce(type, ''), coalesce(description, '')
from clothes
where id = any($1::bigint[])`

const QSelectOutfitClothIDs = `--sql c96bda69-727d-4c25-8354-d09fb298942a
select cloth_id
from outfits_clothes
where outfit_id = $1
order by cloth_id`

const QInsertTryOnAttempt = `--sql 2878ffeb-c143-478b-b025-d0655492e16a
insert into tryon_attempts (id, username, garment_count, outcome, error_kind, duration_ms, created_at)
values ($1, $2, $3, $4, nullif($5, ''), $6, now())`
